package types

import "time"

// BgmTask status values
const (
	BgmTaskStatusProcessing uint8 = 1
	BgmTaskStatusSuccess    uint8 = 2
	BgmTaskStatusFailed     uint8 = 3
)

// Well-known file names inside a task directory
const (
	ConformedAudioFileName = "source_audio.wav"
	MixResultFileName      = "mixed_audio.wav"
	OutputVideoFileName    = "output.mp4"
)

// BgmTask is the persisted record of one processing run.
type BgmTask struct {
	Id          int64   `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	TaskId      string  `json:"task_id" gorm:"column:task_id;uniqueIndex;size:64"`
	MediaSrc    string  `json:"media_src" gorm:"column:media_src"`
	Status      uint8   `json:"status" gorm:"column:status"`
	StatusMsg   string  `json:"status_msg" gorm:"column:status_msg"`
	FailReason  string  `json:"fail_reason" gorm:"column:fail_reason"`
	ProcessPct  uint8   `json:"process_percent" gorm:"column:process_percent"`
	BgmLevel    float64 `json:"bgm_level" gorm:"column:bgm_level"`
	Resolution  string  `json:"resolution" gorm:"column:resolution"`
	OutputPath  string  `json:"output_path" gorm:"column:output_path"`
	SegmentJSON string  `json:"segment_json,omitempty" gorm:"column:segment_json"`

	CreateTime time.Time `json:"create_time" gorm:"column:create_time;autoCreateTime"`
	UpdateTime time.Time `json:"update_time" gorm:"column:update_time;autoUpdateTime"`
}

// RunOptions are the per-run knobs exposed to callers.
type RunOptions struct {
	BgmLevel   *float64 // linear gain applied to the BGM track, nil means config default
	Width      int      // placeholder video resolution for audio-only input
	Height     int
	OutputPath string // empty means derive from task directory
}

// BgmTaskPayload is the wire form of one queued task, shared by the Redis
// queue and the in-process runner.
type BgmTaskPayload struct {
	TaskID     string   `json:"task_id"`
	MediaSrc   string   `json:"media_src"`
	BgmLevel   *float64 `json:"bgm_level,omitempty"`
	Resolution string   `json:"resolution,omitempty"`
}
