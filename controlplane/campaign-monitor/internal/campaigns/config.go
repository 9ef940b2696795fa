package campaigns

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
)

type CrowdfundingClient interface {
	ListCampaigns(ctx context.Context) ([]crowdfunding.CampaignInfo, error)
	ActualContribution(ctx context.Context, info *crowdfunding.CampaignInfo) (uint64, error)
}

type InfluxWriter interface {
	Errors() <-chan error
	WritePoint(point *write.Point)
	Flush()
}

type Config struct {
	Logger       *slog.Logger
	Client       CrowdfundingClient
	Metrics      *Metrics
	Interval     time.Duration
	Clock        clockwork.Clock
	InfluxWriter InfluxWriter
	Env          string
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Client == nil {
		return errors.New("crowdfunding client is required")
	}
	if c.Metrics == nil {
		return errors.New("metrics is required")
	}
	if c.Interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}
