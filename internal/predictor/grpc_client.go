package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yourusername/nba-oracle/internal/config"
	"github.com/yourusername/nba-oracle/internal/models"
)

const (
	// ServiceName is the fully qualified gRPC service of the model server
	ServiceName = "oracle.v1.Predictor"

	predictMethod  = "/" + ServiceName + "/PredictWinProbability"
	describeMethod = "/" + ServiceName + "/DescribeModel"
)

// GRPCClient calls the model server over gRPC. Messages are google.protobuf.Struct values
// so no generated stubs are needed on either side.
type GRPCClient struct {
	conn         *grpc.ClientConn
	health       healthpb.HealthClient
	modelVersion string
	timeout      time.Duration
	logger       *logrus.Logger
}

// NewGRPCClient creates a gRPC predictor client. The connection is established lazily on
// the first call. Extra dial options are appended after the defaults.
func NewGRPCClient(cfg *config.PredictorConfig, logger *logrus.Logger, opts ...grpc.DialOption) (*GRPCClient, error) {
	if logger == nil {
		logger = logrus.New()
	}

	connectParams := grpc.ConnectParams{
		Backoff: backoff.Config{
			BaseDelay:  1 * time.Second,
			Multiplier: 1.6,
			Jitter:     0.2,
			MaxDelay:   5 * time.Second,
		},
		MinConnectTimeout: 10 * time.Second,
	}

	keepAlive := keepalive.ClientParameters{
		Time:                30 * time.Second,
		Timeout:             10 * time.Second,
		PermitWithoutStream: true,
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithConnectParams(connectParams),
		grpc.WithKeepaliveParams(keepAlive),
	}, opts...)

	conn, err := grpc.NewClient(cfg.GRPCAddress, dialOpts...)
	if err != nil {
		logger.WithError(err).Error("Failed to create predictor gRPC client")
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	logger.WithField("address", cfg.GRPCAddress).Info("Predictor gRPC client created")
	return &GRPCClient{
		conn:         conn,
		health:       healthpb.NewHealthClient(conn),
		modelVersion: cfg.ModelVersion,
		timeout:      timeout,
		logger:       logger,
	}, nil
}

// PredictWinProbability implements Predictor
func (c *GRPCClient) PredictWinProbability(ctx context.Context, features models.FeatureVector) (float64, error) {
	start := time.Now()
	defer func() {
		PredictorLatency.WithLabelValues("grpc").Observe(time.Since(start).Seconds())
	}()

	req, err := encodeFeatures(features, c.modelVersion)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, predictMethod, req, resp); err != nil {
		PredictorErrorsTotal.WithLabelValues("PredictWinProbability", "rpc_failed").Inc()
		c.logger.WithError(err).Error("Failed to get prediction from model server")
		return 0, fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}

	p, err := numberField(resp, "probability")
	if err != nil {
		PredictorErrorsTotal.WithLabelValues("PredictWinProbability", "invalid_response").Inc()
		return 0, err
	}
	if err := ValidateProbability(p); err != nil {
		PredictorErrorsTotal.WithLabelValues("PredictWinProbability", "invalid_probability").Inc()
		return 0, err
	}

	PredictorRequestsTotal.WithLabelValues("grpc", "false").Inc()
	return p, nil
}

// ModelInfo implements SchemaDescriber
func (c *GRPCClient) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, describeMethod, &structpb.Struct{}, resp); err != nil {
		PredictorErrorsTotal.WithLabelValues("DescribeModel", "rpc_failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}

	info := &ModelInfo{}
	if v, ok := resp.GetFields()["model_version"]; ok {
		info.ModelVersion = v.GetStringValue()
	}
	names, ok := resp.GetFields()["feature_names"]
	if !ok || names.GetListValue() == nil {
		return nil, fmt.Errorf("%w: missing feature_names", ErrInvalidResponse)
	}
	for _, v := range names.GetListValue().GetValues() {
		info.FeatureNames = append(info.FeatureNames, v.GetStringValue())
	}
	return info, nil
}

// HealthCheck queries the standard gRPC health service for the predictor service
func (c *GRPCClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPredictorUnavailable, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: status %s", ErrPredictorUnavailable, resp.GetStatus())
	}
	return nil
}

// Close closes the gRPC connection
func (c *GRPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// encodeFeatures builds the request message carrying the schema alongside the values
func encodeFeatures(features models.FeatureVector, modelVersion string) (*structpb.Struct, error) {
	names := models.FeatureNames()
	nameList := make([]interface{}, len(names))
	for i, n := range names {
		nameList[i] = n
	}
	values := features.Values()
	valueList := make([]interface{}, len(values))
	for i, v := range values {
		valueList[i] = v
	}

	req, err := structpb.NewStruct(map[string]interface{}{
		"feature_names": nameList,
		"features":      valueList,
		"model_version": modelVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode features: %w", err)
	}
	return req, nil
}

func numberField(s *structpb.Struct, name string) (float64, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidResponse, name)
	}
	if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidResponse, name)
	}
	return v.GetNumberValue(), nil
}
