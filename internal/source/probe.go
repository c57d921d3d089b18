package source

import (
	"context"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Maxxx-VS/CYBER-CHIEF-DOWNLOAD/internal/domain"
)

const probeDialTimeout = 3 * time.Second

// ProbeConfig names what the health checker looks at: the detector feed of
// each camera, the device nodes of the scale link and audio hardware, and
// the sysfs file carrying the CPU temperature in millidegrees. Empty
// entries are reported as down.
type ProbeConfig struct {
	CashierFeed string
	ClientFeed  string
	ChefFeed    string
	ScaleFeed   string

	ScaleLinkDev  string
	MicrophoneDev string
	SpeakerDev    string

	ThermalPath string
}

// DeviceProber implements the equipment health check against real sockets
// and device nodes.
type DeviceProber struct {
	cfg ProbeConfig
}

// NewProber builds a prober.
func NewProber(cfg ProbeConfig) *DeviceProber {
	if cfg.ThermalPath == "" {
		cfg.ThermalPath = "/sys/class/thermal/thermal_zone0/temp"
	}
	return &DeviceProber{cfg: cfg}
}

// Probe checks every device. It never returns an error: an unreachable
// device is exactly the finding, not a failure of the probe.
func (p *DeviceProber) Probe(ctx context.Context) (domain.EquipmentReport, error) {
	return domain.EquipmentReport{
		CashierCamera: reachable(ctx, p.cfg.CashierFeed),
		ClientCamera:  reachable(ctx, p.cfg.ClientFeed),
		ChefCamera:    reachable(ctx, p.cfg.ChefFeed),
		ScaleCamera:   reachable(ctx, p.cfg.ScaleFeed),
		ScaleLink:     devicePresent(p.cfg.ScaleLinkDev),
		Microphone:    devicePresent(p.cfg.MicrophoneDev),
		Speaker:       devicePresent(p.cfg.SpeakerDev),
		CPUTemp:       p.cpuTemp(),
	}, nil
}

func reachable(ctx context.Context, addr string) bool {
	if addr == "" {
		return false
	}
	network := "unix"
	if strings.Contains(addr, ":") {
		network = "tcp"
	}
	d := net.Dialer{Timeout: probeDialTimeout}
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func devicePresent(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// cpuTemp reads the sysfs thermal zone, which reports millidegrees
// Celsius. Unreadable or garbage values come back as zero.
func (p *DeviceProber) cpuTemp() float64 {
	raw, err := os.ReadFile(p.cfg.ThermalPath)
	if err != nil {
		return 0
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0
	}
	return float64(milli) / 1000
}
