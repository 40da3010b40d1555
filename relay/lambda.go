package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ZaguanLabs/inplace"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaInvoker is the subset of the Lambda client used by LambdaChannel.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaChannel sends requests to a relay deployed as an AWS Lambda
// function. The function receives the request envelope as its event and
// returns the reply envelope.
type LambdaChannel struct {
	client       LambdaInvoker
	functionName string
}

// NewLambdaChannel creates a channel using the default AWS configuration.
func NewLambdaChannel(ctx context.Context, functionName string) (*LambdaChannel, error) {
	if functionName == "" {
		return nil, &inplace.ConfigError{Message: "lambda function name is required"}
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewLambdaChannelFromClient(lambda.NewFromConfig(cfg), functionName), nil
}

// NewLambdaChannelFromClient creates a channel using an existing client.
func NewLambdaChannelFromClient(client LambdaInvoker, functionName string) *LambdaChannel {
	return &LambdaChannel{client: client, functionName: functionName}
}

// Send implements inplace.Channel.
func (c *LambdaChannel) Send(ctx context.Context, req inplace.Request) (inplace.Reply, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return inplace.Reply{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := c.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(c.functionName),
		Payload:      payload,
	})
	if err != nil {
		return inplace.Reply{}, fmt.Errorf("failed to invoke %s: %w", c.functionName, err)
	}

	if result.FunctionError != nil {
		return inplace.Reply{}, fmt.Errorf("lambda error: %s: %s", *result.FunctionError, result.Payload)
	}

	var reply inplace.Reply
	if err := json.Unmarshal(result.Payload, &reply); err != nil {
		return inplace.Reply{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return reply, nil
}

var _ inplace.Channel = (*LambdaChannel)(nil)
