package dashboard

import (
	"fmt"

	"github.com/gm2211/hudson-dashboard/models"
)

// AutoMigrate 创建/更新草稿表与快照表。
// 快照载荷不做迁移：旧格式的快照在读取时归一化。
func (e *DashboardEngine) AutoMigrate() error {
	e.logger.Info("AutoMigrate...")
	if err := e.config.DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
