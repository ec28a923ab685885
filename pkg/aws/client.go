package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"

	"github.com/versus-control/ecs-ops-agent/internal/logging"
)

type Client struct {
	cfg        aws.Config
	ecs        *ecs.Client
	elbv2      *elasticloadbalancingv2.Client
	cloudwatch *cloudwatch.Client
	logger     *logging.Logger
}

func NewClient(region string, logger *logging.Logger) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		cfg:        cfg,
		ecs:        ecs.NewFromConfig(cfg),
		elbv2:      elasticloadbalancingv2.NewFromConfig(cfg),
		cloudwatch: cloudwatch.NewFromConfig(cfg),
		logger:     logger,
	}, nil
}

// HealthCheck verifies AWS connectivity
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.ecs.ListClusters(ctx, &ecs.ListClustersInput{})
	if err != nil {
		return fmt.Errorf("AWS health check failed: %w", err)
	}
	return nil
}

// GetRegion returns the configured AWS region
func (c *Client) GetRegion() string {
	return c.cfg.Region
}
