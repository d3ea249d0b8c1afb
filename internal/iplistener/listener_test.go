package iplistener

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/your-org/gtp-tunnel/internal/config"
	"github.com/your-org/gtp-tunnel/internal/stats"
)

func newTestListener(t *testing.T, srcCIDR, dstCIDR string) *Listener {
	t.Helper()
	cfg := &config.Config{}
	cfg.IPListener.SourceCIDR = srcCIDR
	cfg.IPListener.DestCIDR = dstCIDR

	logger, _ := zap.NewDevelopment()
	l, err := New(cfg, &stats.Counters{}, logger)
	require.NoError(t, err)
	return l
}

func TestPassesFilter_NoFiltersConfigured_Drops(t *testing.T) {
	l := newTestListener(t, "", "")
	assert.False(t, l.passesFilter(net.ParseIP("10.0.0.1"), net.ParseIP("10.0.0.2")))
}

func TestPassesFilter_SourceMatch(t *testing.T) {
	l := newTestListener(t, "10.45.0.0/16", "")
	assert.True(t, l.passesFilter(net.ParseIP("10.45.1.2"), net.ParseIP("8.8.8.8")))
	assert.False(t, l.passesFilter(net.ParseIP("192.168.1.2"), net.ParseIP("8.8.8.8")))
}

func TestPassesFilter_DestMatch(t *testing.T) {
	l := newTestListener(t, "", "10.45.0.0/16")
	assert.True(t, l.passesFilter(net.ParseIP("8.8.8.8"), net.ParseIP("10.45.9.9")))
	assert.False(t, l.passesFilter(net.ParseIP("8.8.8.8"), net.ParseIP("192.168.1.1")))
}

func TestNew_InvalidCIDR(t *testing.T) {
	cfg := &config.Config{}
	cfg.IPListener.SourceCIDR = "not-a-cidr"
	logger, _ := zap.NewDevelopment()

	_, err := New(cfg, &stats.Counters{}, logger)
	assert.Error(t, err)
}
