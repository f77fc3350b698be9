package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "sensor"
	serviceName       = "pacer.sensor.v1.MotionSensor"
	jsonCodecName     = "json"
	methodGetInfo     = "/" + serviceName + "/GetInfo"
	methodReadSamples = "/" + serviceName + "/ReadSamples"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "PACER_SENSOR_PLUGIN",
	MagicCookieValue: "pacer",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	RateHz  int32  `json:"rate_hz"`
}

type ReadSamplesRequest struct {
	// Max bounds the batch; zero lets the plugin choose.
	Max int32 `json:"max"`
}

// Sample axes are pointers so a plugin can leave an axis out.
type Sample struct {
	UnixMS int64    `json:"unix_ms"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Z      *float64 `json:"z,omitempty"`
}

type ReadSamplesResponse struct {
	Samples []Sample `json:"samples"`
}

type MotionSensorServer interface {
	GetInfo(ctx context.Context, in *Empty) (*Info, error)
	ReadSamples(ctx context.Context, in *ReadSamplesRequest) (*ReadSamplesResponse, error)
}

type MotionSensorClient interface {
	GetInfo(ctx context.Context) (*Info, error)
	ReadSamples(ctx context.Context, in *ReadSamplesRequest) (*ReadSamplesResponse, error)
}

type motionSensorClient struct {
	conn *grpc.ClientConn
}

func NewMotionSensorClient(conn *grpc.ClientConn) MotionSensorClient {
	return &motionSensorClient{conn: conn}
}

func (c *motionSensorClient) GetInfo(ctx context.Context) (*Info, error) {
	out := &Info{}
	if err := c.conn.Invoke(ctx, methodGetInfo, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *motionSensorClient) ReadSamples(ctx context.Context, in *ReadSamplesRequest) (*ReadSamplesResponse, error) {
	out := &ReadSamplesResponse{}
	if err := c.conn.Invoke(ctx, methodReadSamples, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterMotionSensorServer(server grpc.ServiceRegistrar, impl MotionSensorServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*MotionSensorServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetInfo",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetInfo(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetInfo}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetInfo(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "ReadSamples",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &ReadSamplesRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.ReadSamples(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodReadSamples}
					handler := func(ctx context.Context, req any) (any, error) {
						inReq, ok := req.(*ReadSamplesRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.ReadSamples(ctx, inReq)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/sensor-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl MotionSensorServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterMotionSensorServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewMotionSensorClient(conn), nil
}

func PluginMap(impl MotionSensorServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
