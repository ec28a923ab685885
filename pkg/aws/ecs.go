package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"github.com/sirupsen/logrus"
)

// ========== ECS Cluster and Service Methods ==========

// shortName reduces an ECS ARN to its trailing resource name
func shortName(arn string) string {
	if idx := strings.LastIndex(arn, "/"); idx >= 0 {
		return arn[idx+1:]
	}
	return arn
}

// ListClusters returns the short names of all ECS clusters in the region
func (c *Client) ListClusters(ctx context.Context) ([]string, error) {
	var names []string
	var nextToken *string

	for {
		result, err := c.ecs.ListClusters(ctx, &ecs.ListClustersInput{
			NextToken: nextToken,
		})
		if err != nil {
			c.logger.WithError(err).Error("Failed to list ECS clusters")
			return nil, fmt.Errorf("failed to list clusters: %w", err)
		}

		for _, arn := range result.ClusterArns {
			names = append(names, shortName(arn))
		}

		nextToken = result.NextToken
		if nextToken == nil {
			break
		}
	}

	return names, nil
}

// ListServicePage returns one page of service short names for a cluster plus
// the continuation token for the next page, if any. Callers loop until the
// returned token is nil.
func (c *Client) ListServicePage(ctx context.Context, cluster string, nextToken *string) ([]string, *string, error) {
	result, err := c.ecs.ListServices(ctx, &ecs.ListServicesInput{
		Cluster:   aws.String(cluster),
		NextToken: nextToken,
	})
	if err != nil {
		c.logger.WithError(err).WithField("cluster", cluster).Error("Failed to list ECS services")
		return nil, nil, fmt.Errorf("failed to list services for cluster %s: %w", cluster, err)
	}

	names := make([]string, 0, len(result.ServiceArns))
	for _, arn := range result.ServiceArns {
		names = append(names, shortName(arn))
	}

	return names, result.NextToken, nil
}

// ListServices pages through every service in a cluster
func (c *Client) ListServices(ctx context.Context, cluster string) ([]string, error) {
	var services []string
	var nextToken *string

	for {
		page, token, err := c.ListServicePage(ctx, cluster, nextToken)
		if err != nil {
			return nil, err
		}
		services = append(services, page...)

		nextToken = token
		if nextToken == nil {
			break
		}
	}

	return services, nil
}

// DescribeService returns the ECS service description for a service within a
// cluster. A failure entry from the API surfaces as an error.
func (c *Client) DescribeService(ctx context.Context, cluster, service string) (*ecstypes.Service, error) {
	result, err := c.ecs.DescribeServices(ctx, &ecs.DescribeServicesInput{
		Cluster:  aws.String(cluster),
		Services: []string{service},
	})
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"cluster": cluster,
			"service": service,
		}).Error("Failed to describe ECS service")
		return nil, fmt.Errorf("failed to describe service %s in cluster %s: %w", service, cluster, err)
	}

	if len(result.Failures) > 0 {
		failure := result.Failures[0]
		reason := "unknown error"
		if failure.Reason != nil {
			reason = *failure.Reason
		}
		return nil, fmt.Errorf("service error: %s", reason)
	}

	if len(result.Services) == 0 {
		return nil, fmt.Errorf("service %s not found in cluster %s", service, cluster)
	}

	return &result.Services[0], nil
}

// DescribeTaskDefinition returns the task definition for the given ARN
func (c *Client) DescribeTaskDefinition(ctx context.Context, taskDefARN string) (*ecstypes.TaskDefinition, error) {
	result, err := c.ecs.DescribeTaskDefinition(ctx, &ecs.DescribeTaskDefinitionInput{
		TaskDefinition: aws.String(taskDefARN),
	})
	if err != nil {
		c.logger.WithError(err).WithField("taskDefinition", taskDefARN).Error("Failed to describe task definition")
		return nil, fmt.Errorf("failed to describe task definition %s: %w", taskDefARN, err)
	}

	return result.TaskDefinition, nil
}

// ListRunningTasks returns the ARNs of the RUNNING tasks of a service
func (c *Client) ListRunningTasks(ctx context.Context, cluster, service string) ([]string, error) {
	result, err := c.ecs.ListTasks(ctx, &ecs.ListTasksInput{
		Cluster:       aws.String(cluster),
		ServiceName:   aws.String(service),
		DesiredStatus: ecstypes.DesiredStatusRunning,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for service %s: %w", service, err)
	}

	return result.TaskArns, nil
}

// DescribeTasks returns the task descriptions for the given task ARNs
func (c *Client) DescribeTasks(ctx context.Context, cluster string, taskARNs []string) ([]ecstypes.Task, error) {
	result, err := c.ecs.DescribeTasks(ctx, &ecs.DescribeTasksInput{
		Cluster: aws.String(cluster),
		Tasks:   taskARNs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe tasks in cluster %s: %w", cluster, err)
	}

	return result.Tasks, nil
}
