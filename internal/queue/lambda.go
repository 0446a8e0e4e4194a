package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/lambda"
	"github.com/aws/aws-sdk-go/service/lambda/lambdaiface"
)

// LambdaInvoker starts the processing function with an asynchronous
// ("Event") invocation.
type LambdaInvoker struct {
	Client       lambdaiface.LambdaAPI
	FunctionName string
}

func NewLambdaInvoker(region, functionName string) (*LambdaInvoker, error) {
	if functionName == "" {
		return nil, fmt.Errorf("lambda invoker: function name is empty")
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &LambdaInvoker{Client: lambda.New(sess), FunctionName: functionName}, nil
}

func (l *LambdaInvoker) Invoke(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	out, err := l.Client.InvokeWithContext(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(l.FunctionName),
		InvocationType: aws.String(lambda.InvocationTypeEvent),
		Payload:        payload,
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", l.FunctionName, err)
	}
	if out.FunctionError != nil {
		return fmt.Errorf("invoke %s: %s", l.FunctionName, aws.StringValue(out.FunctionError))
	}
	return nil
}
