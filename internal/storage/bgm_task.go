package storage

import (
	"errors"

	"gorm.io/gorm"

	"soundbed/internal/types"
)

func SaveTask(task *types.BgmTask) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	// Upsert by task_id: the primary key is internal, task_id is the handle
	// callers hold.
	var existing types.BgmTask
	result := DB.Where("task_id = ?", task.TaskId).First(&existing)

	if result.Error == nil {
		task.Id = existing.Id
		return DB.Save(task).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(task).Error
	}
	return result.Error
}

func GetTask(taskId string) (*types.BgmTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var task types.BgmTask
	if err := DB.Where("task_id = ?", taskId).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func GetTaskHistory(limit int) ([]types.BgmTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var tasks []types.BgmTask
	if err := DB.Order("create_time desc").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func DeleteTask(taskId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("task_id = ?", taskId).Delete(&types.BgmTask{}).Error
}

// MarkStaleTasks marks tasks still flagged as running as failed. Called on
// startup to clean up runs interrupted by a crash or restart.
func MarkStaleTasks() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.BgmTask{}).
		Where("status = ?", types.BgmTaskStatusProcessing).
		Updates(map[string]interface{}{
			"status":      types.BgmTaskStatusFailed,
			"fail_reason": "Task interrupted by server restart",
			"status_msg":  "Interrupted",
		})
	return result.RowsAffected, result.Error
}
