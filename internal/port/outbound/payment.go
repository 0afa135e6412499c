package outbound

import "context"

// TestPaymentRequest describes a sandbox charge used to unlock premium.
type TestPaymentRequest struct {
	UserID   string
	Amount   int64
	Currency string
}

// PaymentProviderPort confirms payments with the payment processor.
type PaymentProviderPort interface {
	// ConfirmTestPayment creates and confirms a test charge and returns its reference.
	ConfirmTestPayment(ctx context.Context, req *TestPaymentRequest) (string, error)
}
