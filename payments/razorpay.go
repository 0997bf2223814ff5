package payments

import (
	"context"
	"time"

	"github.com/Rhymond/go-money"
	razorpay "github.com/razorpay/razorpay-go"
)

var _ Gateway = &RazorpayGateway{}

type RazorpayGateway struct {
	client  *razorpay.Client
	timeout time.Duration
}

func NewRazorpayGateway(keyId, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client:  razorpay.NewClient(keyId, keySecret),
		timeout: 10 * time.Second,
	}
}

// CreateOrder asks Razorpay for an order in the smallest currency unit.
// The razorpay client is not context aware, so the call runs on a goroutine
// and the bounded timeout is enforced here.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, params OrderParams) (Order, error) {
	data := map[string]interface{}{
		"amount":   params.Amount.Amount(),
		"currency": params.Amount.Currency().Code,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		notes := map[string]interface{}{}
		for k, v := range params.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type orderResp struct {
		body map[string]interface{}
		err  error
	}
	respCh := make(chan orderResp, 1)
	go func() {
		body, err := g.client.Order.Create(data, nil)
		respCh <- orderResp{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return Order{}, NewGatewayUnreachableError("Timed out creating razorpay order", ctx.Err())
	case resp := <-respCh:
		if resp.err != nil {
			return Order{}, NewOrderRejectedError("Razorpay rejected the order", resp.err)
		}
		return razorpayOrderToOrder(resp.body)
	}
}

func razorpayOrderToOrder(body map[string]interface{}) (Order, error) {
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return Order{}, NewMalformedResponseError("Razorpay order response has no id", nil)
	}

	// Razorpay decodes JSON numbers as float64.
	amount, ok := body["amount"].(float64)
	if !ok {
		return Order{}, NewMalformedResponseError("Razorpay order response has no amount", nil)
	}
	currency, ok := body["currency"].(string)
	if !ok {
		return Order{}, NewMalformedResponseError("Razorpay order response has no currency", nil)
	}

	createdAt := time.Now()
	if ts, ok := body["created_at"].(float64); ok {
		createdAt = time.Unix(int64(ts), 0)
	}

	return Order{
		ID:        id,
		Amount:    money.New(int64(amount), currency),
		CreatedAt: createdAt,
	}, nil
}
