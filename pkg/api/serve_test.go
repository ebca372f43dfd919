package api

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/NVIDIA/hwmatch/pkg/collector"
	"github.com/NVIDIA/hwmatch/pkg/collector/host"
	"github.com/NVIDIA/hwmatch/pkg/collector/sysfs"
	"github.com/NVIDIA/hwmatch/pkg/config"
	"github.com/NVIDIA/hwmatch/pkg/device"
	"github.com/NVIDIA/hwmatch/pkg/errors"
	"github.com/NVIDIA/hwmatch/pkg/manager"
)

type staticDevices []*device.Device

func (s staticDevices) Collect(context.Context) ([]*device.Device, error) { return s, nil }

type staticHost host.Info

func (s *staticHost) Collect(context.Context) (*host.Info, error) {
	info := host.Info(*s)
	return &info, nil
}

// errSource fails every Receive with err.
type errSource struct{ err error }

func (s errSource) Receive() ([]byte, error) { return nil, s.err }
func (errSource) Close() error               { return nil }

type testFactory struct {
	devs   staticDevices
	source sysfs.Source
}

func (f *testFactory) CreateDeviceCollector() collector.DeviceCollector { return f.devs }
func (f *testFactory) CreateHostCollector() collector.HostCollector {
	return &staticHost{Kernel: "6.8.0-45-generic"}
}
func (f *testFactory) CreateMonitor(opts ...sysfs.MonitorOption) *sysfs.Monitor {
	return sysfs.NewMonitor(sysfs.New(), append(opts, sysfs.WithSource(f.source))...)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "hwmatchd", name)
	assert.Equal(t, "dev", versionDefault)
	assert.NotEmpty(t, version)
	assert.NotEmpty(t, commit)
	assert.NotEmpty(t, date)
}

func TestNewServer(t *testing.T) {
	cfg := config.Default()
	cfg.Catalogs = nil
	cfg.ModaliasDirs = nil

	f := &testFactory{
		devs: staticDevices{
			device.MustNew(dgpuPath, device.TypeGPU,
				device.WithIDs(0x10de, 0x2204),
				device.WithModalias("pci:v000010DEd00002204sv00001458sd00004043bc03sc00i00")),
		},
		source: errSource{err: io.EOF},
	}

	s, err := newServer(context.Background(), cfg, f)
	require.NoError(t, err)

	rec := get(t, s.Handler(), "/v1/devices?type=gpu")
	require.Equal(t, http.StatusOK, rec.Code)
	r := decode(t, rec)
	require.Len(t, r.Devices, 1)
	assert.Equal(t, []string{"nvidia-driver"}, r.Devices[0].Packages)
	assert.Equal(t, "6.8.0-45-generic", r.Metadata["kernel"])
}

func TestServerConfig(t *testing.T) {
	t.Setenv("PORT", "")

	cfg := config.Default()
	cfg.Server = config.Server{Address: "127.0.0.1", Port: 9090, RateLimit: 5, RateLimitBurst: 10}

	sc := serverConfig(cfg)
	assert.Equal(t, "127.0.0.1:9090", sc.Addr())
	assert.Equal(t, rate.Limit(5), sc.RateLimit)
	assert.Equal(t, 10, sc.RateLimitBurst)

	t.Setenv("PORT", "7070")
	assert.Equal(t, 7070, serverConfig(cfg).Port)
}

func TestReadyCheck(t *testing.T) {
	m, err := manager.New()
	require.NoError(t, err)

	check := readyCheck(m)
	assert.True(t, errors.IsCode(check(), errors.ErrCodeUnavailable))

	m.AddDevice(device.MustNew(igpuPath, device.TypeGPU))
	assert.NoError(t, check())
}

func TestMonitorTask(t *testing.T) {
	m, err := manager.New()
	require.NoError(t, err)

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"end of stream", io.EOF, false},
		{"uevents unavailable", errors.New(errors.ErrCodeUnavailable, "no netlink"), false},
		{"receive failure", errors.New(errors.ErrCodeInternal, "boom"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mon := sysfs.NewMonitor(sysfs.New(), sysfs.WithSource(errSource{err: tt.err}))
			err := monitorTask(mon, m)(context.Background())
			assert.Equal(t, tt.wantErr, err != nil, "err = %v", err)
		})
	}
}
