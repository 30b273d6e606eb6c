// Package dto defines the request and response shapes of the HTTP API.
package dto

import "soundbed/internal/types"

type StartBgmTaskReq struct {
	MediaSrc string `json:"media_src" binding:"required"`
	// Omitting bgm_level picks the configured default; zero mutes the BGM.
	BgmLevel   *float64 `json:"bgm_level"`
	Resolution string   `json:"resolution"`
}

type StartBgmTaskRes struct {
	TaskId string `json:"task_id"`
}

type GetBgmTaskReq struct {
	TaskId string `form:"taskId" binding:"required"`
}

type BgmTaskStatusRes struct {
	TaskId      string  `json:"task_id"`
	Status      uint8   `json:"status"`
	StatusMsg   string  `json:"status_msg"`
	ProcessPct  uint8   `json:"process_percent"`
	FailReason  string  `json:"fail_reason,omitempty"`
	OutputPath  string  `json:"output_path,omitempty"`
	SegmentJSON string  `json:"segments,omitempty"`
	BgmLevel    float64 `json:"bgm_level"`
}

func BgmTaskStatusFromModel(task *types.BgmTask) *BgmTaskStatusRes {
	return &BgmTaskStatusRes{
		TaskId:      task.TaskId,
		Status:      task.Status,
		StatusMsg:   task.StatusMsg,
		ProcessPct:  task.ProcessPct,
		FailReason:  task.FailReason,
		OutputPath:  task.OutputPath,
		SegmentJSON: task.SegmentJSON,
		BgmLevel:    task.BgmLevel,
	}
}

type BgmTaskHistoryItem struct {
	TaskId     string `json:"task_id"`
	MediaSrc   string `json:"media_src"`
	Status     uint8  `json:"status"`
	ProcessPct uint8  `json:"process_percent"`
	OutputPath string `json:"output_path,omitempty"`
	CreateTime string `json:"create_time"`
}
