package out

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	sensorrpc "pacer/internal/modules/sensor/adapter/out/rpc"
	"pacer/internal/modules/sensor/domain"
	sensorout "pacer/internal/modules/sensor/port/out"
	apperrors "pacer/internal/platform/errors"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 2 * time.Second
	defaultBatch        = 64
)

// GRPCDevice runs a sensor plugin binary and polls it for sample batches.
type GRPCDevice struct {
	manifest domain.Manifest
	poll     time.Duration
	logger   hclog.Logger
}

func NewGRPCDevice(manifest domain.Manifest, poll time.Duration, debug io.Writer) sensorout.Device {
	if poll <= 0 {
		poll = 50 * time.Millisecond
	}
	level := hclog.NoLevel
	if debug == nil {
		debug = io.Discard
	} else {
		level = hclog.Debug
	}
	return &GRPCDevice{
		manifest: manifest,
		poll:     poll,
		logger:   hclog.New(&hclog.LoggerOptions{Name: "sensor-plugin", Output: debug, Level: level}),
	}
}

func (d *GRPCDevice) Probe(ctx context.Context) (domain.Info, error) {
	if err := d.verify(); err != nil {
		return domain.Info{}, err
	}
	client, closeFn, err := d.connect()
	if err != nil {
		return domain.Info{}, fmt.Errorf("%w: %v", apperrors.ErrSensorUnavailable, err)
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	info, err := client.GetInfo(callCtx)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.Info{}, fmt.Errorf("%w: %w", apperrors.ErrSensorUnavailable, domain.ErrPluginTimeout)
		}
		return domain.Info{}, fmt.Errorf("%w: get info: %v", apperrors.ErrSensorUnavailable, err)
	}
	return domain.Info{Name: info.Name, Version: info.Version, Mode: domain.ModeDevice, RateHz: int(info.RateHz)}, nil
}

// Stream keeps one plugin process for the whole subscription.
func (d *GRPCDevice) Stream(ctx context.Context, emit func(domain.Sample)) error {
	if err := d.verify(); err != nil {
		return err
	}
	client, closeFn, err := d.connect()
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSensorUnavailable, err)
	}
	defer closeFn()

	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		callCtx, cancel := callContext(ctx, defaultCallTimeout)
		batch, err := client.ReadSamples(callCtx, &sensorrpc.ReadSamplesRequest{Max: defaultBatch})
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read samples: %w", err)
		}
		for _, s := range batch.Samples {
			emit(domain.Sample{At: time.UnixMilli(s.UnixMS).UTC(), X: s.X, Y: s.Y, Z: s.Z})
		}
	}
}

func (d *GRPCDevice) verify() error {
	if err := d.manifest.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrSensorUnavailable, err)
	}
	if _, err := os.Stat(d.manifest.Binary); err != nil {
		return fmt.Errorf("%w: binary does not exist: %s", apperrors.ErrSensorUnavailable, d.manifest.Binary)
	}
	if d.manifest.SHA256 == "" {
		return nil
	}
	return checksumMatches(d.manifest.Binary, d.manifest.SHA256)
}

func (d *GRPCDevice) connect() (sensorrpc.MotionSensorClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  sensorrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          sensorrpc.PluginMap(nil),
		Cmd:              exec.Command(d.manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           d.logger,
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start plugin client: %w", err)
	}
	raw, err := rpcClient.Dispense(sensorrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense plugin: %w", err)
	}
	typed, ok := raw.(sensorrpc.MotionSensorClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("plugin rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %w: %s", apperrors.ErrSensorUnavailable, domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
