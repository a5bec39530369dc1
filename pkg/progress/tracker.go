package progress

import (
	"sync"

	"github.com/moyu-x/sort-folder/pkg/logger"
)

// Tracker 记录一批任务的处理进度，每处理 every 个文件输出一次进度日志
type Tracker struct {
	mu        sync.Mutex
	total     int
	every     int
	processed int
	failed    int
	message   string
}

func NewTracker(total, every int, message string) *Tracker {
	if every <= 0 {
		every = 1
	}
	return &Tracker{
		total:   total,
		every:   every,
		message: message,
	}
}

// MarkProcessed 标记一个文件处理完成，err 不为 nil 时同时计入失败数
func (t *Tracker) MarkProcessed(err error) {
	t.mu.Lock()
	t.processed++
	if err != nil {
		t.failed++
	}
	processed := t.processed
	t.mu.Unlock()

	if processed%t.every == 0 || processed == t.total {
		logger.Progress(processed, t.total, t.message)
	}
}

// GetProcessedCount 获取已处理文件数（含失败）
func (t *Tracker) GetProcessedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processed
}

// GetFailedCount 获取失败文件数
func (t *Tracker) GetFailedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}
