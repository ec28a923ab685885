package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/versus-control/ecs-ops-agent/pkg/types"
)

// ========== Target Group Methods ==========

// TargetGroupInfo identifies a target group and its load balancer using the
// CloudWatch dimension formats both metrics APIs expect.
type TargetGroupInfo struct {
	TargetGroupARN string
	// TargetGroupDimension is the trailing "targetgroup/name/id" segment
	TargetGroupDimension string
	// LoadBalancerDimension is the trailing "app/name/id" segment
	LoadBalancerDimension string
}

// DescribeTargetGroup resolves the metric dimensions for a target group ARN
func (c *Client) DescribeTargetGroup(ctx context.Context, targetGroupARN string) (*TargetGroupInfo, error) {
	result, err := c.elbv2.DescribeTargetGroups(ctx, &elasticloadbalancingv2.DescribeTargetGroupsInput{
		TargetGroupArns: []string{targetGroupARN},
	})
	if err != nil {
		c.logger.WithError(err).WithField("targetGroupArn", targetGroupARN).Error("Failed to describe target group")
		return nil, fmt.Errorf("failed to describe target group %s: %w", targetGroupARN, err)
	}

	if len(result.TargetGroups) == 0 {
		return nil, fmt.Errorf("target group %s not found", targetGroupARN)
	}

	tg := result.TargetGroups[0]
	if len(tg.LoadBalancerArns) == 0 {
		return nil, fmt.Errorf("target group %s has no load balancer", targetGroupARN)
	}

	lbARN := tg.LoadBalancerArns[0]
	lbDimension := lbARN
	if idx := strings.Index(lbARN, "loadbalancer/"); idx >= 0 {
		lbDimension = lbARN[idx+len("loadbalancer/"):]
	}

	tgDimension := targetGroupARN
	if idx := strings.LastIndex(targetGroupARN, ":"); idx >= 0 {
		tgDimension = targetGroupARN[idx+1:]
	}

	return &TargetGroupInfo{
		TargetGroupARN:        targetGroupARN,
		TargetGroupDimension:  tgDimension,
		LoadBalancerDimension: lbDimension,
	}, nil
}

// DescribeTargetHealth returns the health descriptions of a target group's
// registered targets.
func (c *Client) DescribeTargetHealth(ctx context.Context, targetGroupARN string) ([]elbv2types.TargetHealthDescription, error) {
	result, err := c.elbv2.DescribeTargetHealth(ctx, &elasticloadbalancingv2.DescribeTargetHealthInput{
		TargetGroupArn: aws.String(targetGroupARN),
	})
	if err != nil {
		c.logger.WithError(err).WithField("targetGroupArn", targetGroupARN).Error("Failed to describe target health")
		return nil, fmt.Errorf("failed to describe target health for %s: %w", targetGroupARN, err)
	}

	return result.TargetHealthDescriptions, nil
}

// TargetHealthCounts reduces target health descriptions to healthy/total counts
func TargetHealthCounts(descriptions []elbv2types.TargetHealthDescription) types.TargetHealthSummary {
	healthy := 0
	for _, d := range descriptions {
		if d.TargetHealth != nil && d.TargetHealth.State == elbv2types.TargetHealthStateEnumHealthy {
			healthy++
		}
	}

	total := len(descriptions)
	summary := types.TargetHealthSummary{
		HealthyCount: healthy,
		TotalCount:   total,
	}
	if total > 0 {
		summary.HealthPercentage = float64(healthy) / float64(total) * 100
	}
	return summary
}

// UnhealthyTargets extracts the targets that are not reporting healthy
func UnhealthyTargets(descriptions []elbv2types.TargetHealthDescription) []types.UnhealthyTarget {
	var unhealthy []types.UnhealthyTarget
	for _, d := range descriptions {
		if d.TargetHealth == nil || d.TargetHealth.State == elbv2types.TargetHealthStateEnumHealthy {
			continue
		}

		target := types.UnhealthyTarget{
			State: string(d.TargetHealth.State),
		}
		if d.Target != nil && d.Target.Id != nil {
			target.ID = *d.Target.Id
		}
		target.Reason = string(d.TargetHealth.Reason)

		unhealthy = append(unhealthy, target)
	}
	return unhealthy
}
