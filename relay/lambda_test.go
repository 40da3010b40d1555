package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ZaguanLabs/inplace"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// fakeInvoker runs a Handler the way the deployed function would.
type fakeInvoker struct {
	handler  *Handler
	function string
	fnError  string
	err      error
}

func (f *fakeInvoker) Invoke(ctx context.Context, in *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.function = aws.ToString(in.FunctionName)

	if f.fnError != "" {
		return &lambda.InvokeOutput{
			FunctionError: aws.String(f.fnError),
			Payload:       []byte(`{"errorMessage":"crashed"}`),
		}, nil
	}

	var req inplace.Request
	if err := json.Unmarshal(in.Payload, &req); err != nil {
		return nil, err
	}
	reply, err := f.handler.Handle(ctx, req)
	if err != nil {
		return &lambda.InvokeOutput{FunctionError: aws.String("Unhandled"), Payload: []byte(`{}`)}, nil
	}
	payload, err := json.Marshal(reply)
	if err != nil {
		return nil, err
	}
	return &lambda.InvokeOutput{StatusCode: 200, Payload: payload}, nil
}

func TestLambdaChannel_Send(t *testing.T) {
	fake := &fakeInvoker{handler: NewHandler(WithBackend(inplace.ServiceGoogle, NewMockBackend()))}
	ch := NewLambdaChannelFromClient(fake, "inplace-relay")

	reply, err := ch.Send(context.Background(), inplace.Request{Name: inplace.ServiceGoogle, Body: mustBody(t, "<p>Hello</p>")})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := decodeData(t, reply); got != "<p>你好</p>" {
		t.Errorf("data = %q", got)
	}
	if fake.function != "inplace-relay" {
		t.Errorf("function = %q", fake.function)
	}
}

func TestLambdaChannel_FunctionError(t *testing.T) {
	ch := NewLambdaChannelFromClient(&fakeInvoker{fnError: "Unhandled"}, "f")

	if _, err := ch.Send(context.Background(), inplace.Request{Name: inplace.ServiceGoogle, Body: mustBody(t, "x")}); err == nil {
		t.Fatal("Expected error for function error")
	}
}

func TestLambdaChannel_InvokeError(t *testing.T) {
	invokeErr := errors.New("throttled")
	ch := NewLambdaChannelFromClient(&fakeInvoker{err: invokeErr}, "f")

	_, err := ch.Send(context.Background(), inplace.Request{Name: inplace.ServiceGoogle, Body: mustBody(t, "x")})
	if !errors.Is(err, invokeErr) {
		t.Errorf("Expected wrapped invoke error, got %v", err)
	}
}

func TestNewLambdaChannel_RequiresFunction(t *testing.T) {
	_, err := NewLambdaChannel(context.Background(), "")
	var configErr *inplace.ConfigError
	if !errors.As(err, &configErr) {
		t.Errorf("Expected ConfigError, got %v", err)
	}
}
