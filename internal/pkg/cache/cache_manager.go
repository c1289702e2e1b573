package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

// CacheManager holds all application caches
type CacheManager struct {
	// Profile lists loaded by a directory page, keyed by its mount id.
	Directory *UnifiedCache[[]models.Profile]

	// Branch options for the provisioning form.
	Branches *UnifiedCache[[]models.Branch]
}

// NewCacheManager creates a cache manager. directoryTTL bounds how long a
// mounted directory page may filter without reloading.
func NewCacheManager(directoryTTL time.Duration, logger *zap.Logger) *CacheManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if directoryTTL <= 0 {
		directoryTTL = 15 * time.Minute
	}
	return &CacheManager{
		Directory: NewUnifiedCache[[]models.Profile](directoryTTL, "directory", logger),
		Branches:  NewUnifiedCache[[]models.Branch](5*time.Minute, "branches", logger),
	}
}

// GetAllMetrics returns metrics for all caches
func (cm *CacheManager) GetAllMetrics() map[string]CacheMetrics {
	return map[string]CacheMetrics{
		"directory": cm.Directory.GetMetrics(),
		"branches":  cm.Branches.GetMetrics(),
	}
}

// ClearAll clears all caches
func (cm *CacheManager) ClearAll() {
	cm.Directory.Clear()
	cm.Branches.Clear()
}
