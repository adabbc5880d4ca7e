package predictor

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yourusername/nba-oracle/internal/config"
	"github.com/yourusername/nba-oracle/internal/models"
)

// fakeModelServer answers the predictor service with fixed values
type fakeModelServer struct {
	mu           sync.Mutex
	probability  interface{}
	featureNames []string
	fail         bool
	lastRequest  *structpb.Struct
}

func (s *fakeModelServer) predict(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRequest = req
	if s.fail {
		return nil, status.Error(codes.Internal, "model crashed")
	}
	return structpb.NewStruct(map[string]interface{}{"probability": s.probability})
}

func (s *fakeModelServer) describe(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	names := make([]interface{}, len(s.featureNames))
	for i, n := range s.featureNames {
		names[i] = n
	}
	return structpb.NewStruct(map[string]interface{}{
		"model_version": "xgb-2024",
		"feature_names": names,
	})
}

var fakeModelServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PredictWinProbability",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
				in := &structpb.Struct{}
				if err := dec(in); err != nil {
					return nil, err
				}
				return srv.(*fakeModelServer).predict(ctx, in)
			},
		},
		{
			MethodName: "DescribeModel",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpc.UnaryServerInterceptor) (interface{}, error) {
				in := &structpb.Struct{}
				if err := dec(in); err != nil {
					return nil, err
				}
				return srv.(*fakeModelServer).describe(ctx, in)
			},
		},
	},
}

func startFakeModelServer(t *testing.T, fake *fakeModelServer, servingStatus healthpb.HealthCheckResponse_ServingStatus) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	srv.RegisterService(&fakeModelServiceDesc, fake)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, servingStatus)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	cfg := &config.PredictorConfig{
		GRPCAddress:    "passthrough:///bufnet",
		ModelVersion:   "xgb-2024",
		TimeoutSeconds: 5,
	}
	client, err := NewGRPCClient(cfg, nil, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func sampleVector() models.FeatureVector {
	return models.FeatureVector{
		IsHome:      1,
		RestDays:    2,
		RatingPre:   1523.5,
		AvgEFG10:    0.54,
		AvgTOV10:    0.12,
		AvgFTRate10: 0.21,
		AvgOREB10:   0.27,
		AvgPts10:    112.4,
	}
}

// TestGRPCClientPredict tests a successful prediction round trip
func TestGRPCClientPredict(t *testing.T) {
	fake := &fakeModelServer{probability: 0.62, featureNames: models.FeatureNames()}
	client := startFakeModelServer(t, fake, healthpb.HealthCheckResponse_SERVING)

	p, err := client.PredictWinProbability(context.Background(), sampleVector())
	require.NoError(t, err)
	assert.InDelta(t, 0.62, p, 1e-9)

	fake.mu.Lock()
	req := fake.lastRequest
	fake.mu.Unlock()
	require.NotNil(t, req)

	names := req.GetFields()["feature_names"].GetListValue().GetValues()
	require.Len(t, names, len(models.FeatureNames()))
	assert.Equal(t, "is_home", names[0].GetStringValue())
	assert.Equal(t, "avg_pts_10", names[7].GetStringValue())

	values := req.GetFields()["features"].GetListValue().GetValues()
	require.Len(t, values, 8)
	assert.Equal(t, 1523.5, values[2].GetNumberValue())
	assert.Equal(t, "xgb-2024", req.GetFields()["model_version"].GetStringValue())
}

// TestGRPCClientRejectsBadResponses tests probability validation and RPC failures
func TestGRPCClientRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeModelServer
		wantErr error
	}{
		{
			name:    "probability above one",
			fake:    &fakeModelServer{probability: 1.2},
			wantErr: ErrInvalidProbability,
		},
		{
			name:    "probability is not a number",
			fake:    &fakeModelServer{probability: "high"},
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "server error",
			fake:    &fakeModelServer{fail: true},
			wantErr: ErrPredictorUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := startFakeModelServer(t, tt.fake, healthpb.HealthCheckResponse_SERVING)
			_, err := client.PredictWinProbability(context.Background(), sampleVector())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestGRPCClientSchema tests DescribeModel based schema verification
func TestGRPCClientSchema(t *testing.T) {
	client := startFakeModelServer(t, &fakeModelServer{featureNames: models.FeatureNames()}, healthpb.HealthCheckResponse_SERVING)
	info, err := VerifySchema(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "xgb-2024", info.ModelVersion)

	swapped := models.FeatureNames()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	client = startFakeModelServer(t, &fakeModelServer{featureNames: swapped}, healthpb.HealthCheckResponse_SERVING)
	_, err = VerifySchema(context.Background(), client)
	assert.ErrorIs(t, err, ErrFeatureOrderMismatch)
}

// TestGRPCClientHealthCheck tests the standard health protocol
func TestGRPCClientHealthCheck(t *testing.T) {
	client := startFakeModelServer(t, &fakeModelServer{}, healthpb.HealthCheckResponse_SERVING)
	assert.NoError(t, client.HealthCheck(context.Background()))

	client = startFakeModelServer(t, &fakeModelServer{}, healthpb.HealthCheckResponse_NOT_SERVING)
	assert.ErrorIs(t, client.HealthCheck(context.Background()), ErrPredictorUnavailable)
}
