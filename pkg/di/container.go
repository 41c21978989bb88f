// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/fsbx/pkg/metrics"
	"github.com/ssargent/fsbx/pkg/volume"
)

// VolumeOpener opens and decompresses a volume file
type VolumeOpener func(path string) (*volume.Volume, error)

// MetricsFactory creates the metrics for one run
type MetricsFactory func() *metrics.Metrics

// Container holds all the dependencies for the application
type Container struct {
	volumeOpener   VolumeOpener
	metricsFactory MetricsFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		volumeOpener:   volume.Open,
		metricsFactory: metrics.NewMetrics,
	}
}

// GetVolumeOpener returns the volume opener
func (c *Container) GetVolumeOpener() VolumeOpener {
	return c.volumeOpener
}

// SetVolumeOpener allows overriding the volume opener (for testing)
func (c *Container) SetVolumeOpener(opener VolumeOpener) {
	c.volumeOpener = opener
}

// GetMetricsFactory returns the metrics factory
func (c *Container) GetMetricsFactory() MetricsFactory {
	return c.metricsFactory
}

// SetMetricsFactory allows overriding the metrics factory (for testing)
func (c *Container) SetMetricsFactory(factory MetricsFactory) {
	c.metricsFactory = factory
}
