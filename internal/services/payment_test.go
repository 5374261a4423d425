package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/config"
)

func newFlowService() *PaymentFlowService {
	return NewPaymentFlowService(config.BankConfig{BankName: "Banco de Chile"}, "https://mpago.la/test")
}

func receiptServer(t *testing.T, status int) (*api.Client, *int) {
	t.Helper()
	var uploads int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transacciones/" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		uploads++
		w.WriteHeader(status)
		if status == http.StatusCreated {
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "estado": "PENDIENTE"})
		} else {
			json.NewEncoder(w).Encode(map[string]string{"detail": "monto inválido"})
		}
	}))
	t.Cleanup(server.Close)
	return api.NewClient(server.URL, 5*time.Second), &uploads
}

func testUpload() api.ReceiptUpload {
	return api.ReceiptUpload{Filename: "comprobante.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}
}

func TestFlowStartsInSelection(t *testing.T) {
	s := newFlowService()
	flow := s.Start(15000, "Taller de telar", 0, nil, nil)

	if flow.State != StateSelection {
		t.Errorf("New flow must start in selection, got %s", flow.State)
	}
	got, err := s.Get(flow.ID)
	if err != nil || got.ID != flow.ID {
		t.Errorf("Get should find the flow, got %v, %v", got, err)
	}
}

func TestFlowTransferPath(t *testing.T) {
	s := newFlowService()
	ctx := context.Background()

	confirms := 0
	confirm := func(ctx context.Context) (int, int, error) {
		confirms++
		return 42, 0, nil
	}
	flow := s.Start(15000, "Taller de telar", 0, confirm, nil)

	flow, err := s.SelectMethod(ctx, flow.ID, MethodTransfer)
	if err != nil {
		t.Fatalf("SelectMethod failed: %v", err)
	}
	if flow.State != StateBankDetails {
		t.Errorf("Transfer should land on bank_details, got %s", flow.State)
	}
	if confirms != 1 || flow.EnrollmentID != 42 {
		t.Errorf("Expected one confirm creating enrollment 42, got confirms=%d id=%d", confirms, flow.EnrollmentID)
	}

	if flow, err = s.GoToUpload(flow.ID); err != nil || flow.State != StateUpload {
		t.Fatalf("GoToUpload failed: %v (state %s)", err, flow.State)
	}
	if flow, err = s.BackToBankDetails(flow.ID); err != nil || flow.State != StateBankDetails {
		t.Fatalf("BackToBankDetails failed: %v (state %s)", err, flow.State)
	}
	if flow, err = s.GoToUpload(flow.ID); err != nil {
		t.Fatalf("Second GoToUpload failed: %v", err)
	}

	client, uploads := receiptServer(t, http.StatusCreated)
	successes := 0
	flow.onSuccess = func() { successes++ }

	flow, err = s.SubmitReceipt(ctx, client, flow.ID, testUpload())
	if err != nil {
		t.Fatalf("SubmitReceipt failed: %v", err)
	}
	if flow.State != StateSuccess {
		t.Errorf("Expected success state, got %s", flow.State)
	}
	if *uploads != 1 {
		t.Errorf("Expected one upload, got %d", *uploads)
	}
	if successes != 1 {
		t.Errorf("Success callback must fire exactly once, got %d", successes)
	}
	if confirms != 1 {
		t.Errorf("Confirm must not run again on submit, got %d", confirms)
	}
}

func TestFlowMercadoPagoPath(t *testing.T) {
	s := newFlowService()
	ctx := context.Background()

	confirms := 0
	flow := s.Start(29990, "Curso de bordado", 0, func(ctx context.Context) (int, int, error) {
		confirms++
		return 7, 0, nil
	}, nil)

	flow, err := s.SelectMethod(ctx, flow.ID, MethodMercadoPago)
	if err != nil {
		t.Fatalf("SelectMethod failed: %v", err)
	}
	if flow.State != StateMPRedirect {
		t.Errorf("Expected mp_redirect, got %s", flow.State)
	}
	if confirms != 1 {
		t.Errorf("Picking Mercado Pago must confirm immediately, got %d", confirms)
	}
}

func TestFlowAlreadyPaidDefersConfirm(t *testing.T) {
	s := newFlowService()
	ctx := context.Background()

	confirms := 0
	flow := s.Start(15000, "Taller de telar", 0, func(ctx context.Context) (int, int, error) {
		confirms++
		return 42, 0, nil
	}, nil)

	flow, err := s.SelectMethod(ctx, flow.ID, MethodAlreadyPaid)
	if err != nil {
		t.Fatalf("SelectMethod failed: %v", err)
	}
	if flow.State != StateUpload {
		t.Errorf("already_paid should jump to upload, got %s", flow.State)
	}
	if confirms != 0 {
		t.Errorf("already_paid must defer the confirm to the submit, got %d", confirms)
	}

	client, _ := receiptServer(t, http.StatusCreated)
	if _, err := s.SubmitReceipt(ctx, client, flow.ID, testUpload()); err != nil {
		t.Fatalf("SubmitReceipt failed: %v", err)
	}
	if confirms != 1 {
		t.Errorf("Submit must confirm exactly once, got %d", confirms)
	}
}

func TestFlowUploadFailureStaysOnUpload(t *testing.T) {
	s := newFlowService()
	ctx := context.Background()

	flow := s.Resume(15000, "Taller de telar", 42, 0)
	if _, err := s.SelectMethod(ctx, flow.ID, MethodAlreadyPaid); err != nil {
		t.Fatalf("SelectMethod failed: %v", err)
	}

	client, uploads := receiptServer(t, http.StatusBadRequest)
	flow, err := s.SubmitReceipt(ctx, client, flow.ID, testUpload())
	if err == nil {
		t.Fatal("Expected upload error")
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Message() != "monto inválido" {
		t.Errorf("Expected API message to surface, got %v", err)
	}
	if flow.State != StateUpload {
		t.Errorf("Failed upload must stay on upload, got %s", flow.State)
	}
	if *uploads != 1 {
		t.Errorf("Expected one upload attempt, got %d", *uploads)
	}

	// The user can retry from the same step.
	retryClient, _ := receiptServer(t, http.StatusCreated)
	if flow, err = s.SubmitReceipt(ctx, retryClient, flow.ID, testUpload()); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if flow.State != StateSuccess {
		t.Errorf("Expected success after retry, got %s", flow.State)
	}
}

func TestFlowInvalidTransitions(t *testing.T) {
	s := newFlowService()
	ctx := context.Background()
	client, uploads := receiptServer(t, http.StatusCreated)

	flow := s.Resume(15000, "Taller", 42, 0)

	if _, err := s.SubmitReceipt(ctx, client, flow.ID, testUpload()); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Submitting from selection must fail, got %v", err)
	}
	if *uploads != 0 {
		t.Errorf("No upload may happen outside the upload step, got %d", *uploads)
	}
	if _, err := s.GoToUpload(flow.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("GoToUpload from selection must fail, got %v", err)
	}

	if _, err := s.SelectMethod(ctx, flow.ID, "paypal"); err == nil {
		t.Error("Unknown method must be rejected")
	}

	if _, err := s.SelectMethod(ctx, flow.ID, MethodTransfer); err != nil {
		t.Fatalf("SelectMethod failed: %v", err)
	}
	if _, err := s.SelectMethod(ctx, flow.ID, MethodTransfer); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Second method pick must fail, got %v", err)
	}
}

func TestFlowConfirmErrorStaysOnSelection(t *testing.T) {
	s := newFlowService()
	ctx := context.Background()

	flow := s.Start(15000, "Taller", 0, func(ctx context.Context) (int, int, error) {
		return 0, 0, errors.New("cupos agotados")
	}, nil)

	if _, err := s.SelectMethod(ctx, flow.ID, MethodTransfer); err == nil {
		t.Fatal("Expected confirm error")
	}
	got, err := s.Get(flow.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State != StateSelection {
		t.Errorf("Failed confirm must leave the flow on selection, got %s", got.State)
	}
}

func TestFlowCloseDiscardsOnlyModalState(t *testing.T) {
	s := newFlowService()
	flow := s.Resume(15000, "Taller", 42, 0)

	s.Close(flow.ID)
	if _, err := s.Get(flow.ID); !errors.Is(err, ErrFlowNotFound) {
		t.Errorf("Closed flow must be gone, got %v", err)
	}
	// Closing twice is harmless.
	s.Close(flow.ID)
}

func TestFlowUnknownID(t *testing.T) {
	s := newFlowService()
	if _, err := s.Get("nope"); !errors.Is(err, ErrFlowNotFound) {
		t.Errorf("Expected ErrFlowNotFound, got %v", err)
	}
	if _, err := s.SelectMethod(context.Background(), "nope", MethodTransfer); !errors.Is(err, ErrFlowNotFound) {
		t.Errorf("Expected ErrFlowNotFound, got %v", err)
	}
}
