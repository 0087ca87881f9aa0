package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lumenbank/mortgage-engine/internal/application/dto"
	"github.com/lumenbank/mortgage-engine/internal/application/usecase"
	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/pkg/observability"
)

// MortgageHandler implements MortgageServiceServer on top of the application
// usecases.
type MortgageHandler struct {
	UnimplementedMortgageServiceServer

	openAccount      *usecase.OpenAccountUseCase
	activateAccount  *usecase.ActivateAccountUseCase
	processPayment   *usecase.ProcessPaymentUseCase
	runScheduledTick *usecase.RunScheduledTickUseCase
	changeParameters *usecase.ChangeParametersUseCase
	convertProduct   *usecase.ConvertProductUseCase
	closeAccount     *usecase.CloseAccountUseCase
	getBalances      *usecase.GetBalancesUseCase

	metrics *observability.EngineMetrics
	logger  *slog.Logger
}

// NewMortgageHandler wires the handler.
func NewMortgageHandler(
	openAccount *usecase.OpenAccountUseCase,
	activateAccount *usecase.ActivateAccountUseCase,
	processPayment *usecase.ProcessPaymentUseCase,
	runScheduledTick *usecase.RunScheduledTickUseCase,
	changeParameters *usecase.ChangeParametersUseCase,
	convertProduct *usecase.ConvertProductUseCase,
	closeAccount *usecase.CloseAccountUseCase,
	getBalances *usecase.GetBalancesUseCase,
	metrics *observability.EngineMetrics,
	logger *slog.Logger,
) *MortgageHandler {
	return &MortgageHandler{
		openAccount:      openAccount,
		activateAccount:  activateAccount,
		processPayment:   processPayment,
		runScheduledTick: runScheduledTick,
		changeParameters: changeParameters,
		convertProduct:   convertProduct,
		closeAccount:     closeAccount,
		getBalances:      getBalances,
		metrics:          metrics,
		logger:           logger,
	}
}

func (h *MortgageHandler) OpenAccount(ctx context.Context, req *OpenAccountRequest) (*OpenAccountResponse, error) {
	out, err := h.openAccount.Execute(ctx, dto.OpenAccountInput{
		Denomination:           req.Denomination,
		Principal:              req.Principal,
		TotalTermMonths:        req.TotalTermMonths,
		InterestOnlyTermMonths: req.InterestOnlyTermMonths,
		FixedRateTermMonths:    req.FixedRateTermMonths,
		FixedAnnualRate:        req.FixedAnnualRate,
		VariableRateAdjustment: req.VariableRateAdjustment,
		BillingDay:             req.BillingDay,
		OverpaymentImpact:      req.OverpaymentImpact,
	})
	if err != nil {
		return nil, h.toStatus("open account", err)
	}
	return &OpenAccountResponse{AccountID: out.AccountID, Status: out.Status}, nil
}

func (h *MortgageHandler) ActivateAccount(ctx context.Context, req *ActivateAccountRequest) (*ActivateAccountResponse, error) {
	at, err := parseEffectiveAt(req.EffectiveAt)
	if err != nil {
		return nil, err
	}
	out, err := h.activateAccount.Execute(ctx, dto.ActivateAccountInput{
		AccountID:   req.AccountID,
		EffectiveAt: at,
	})
	if err != nil {
		return nil, h.toStatus("activate account", err)
	}
	h.metrics.Invocations.WithLabelValues("ACCOUNT_ACTIVATED").Inc()
	return &ActivateAccountResponse{
		AccountID:    out.AccountID,
		Status:       out.Status,
		FirstDueCalc: out.FirstDueCalc.Format(time.RFC3339),
	}, nil
}

func (h *MortgageHandler) ProcessPayment(ctx context.Context, req *ProcessPaymentRequest) (*ProcessPaymentResponse, error) {
	at, err := parseEffectiveAt(req.EffectiveAt)
	if err != nil {
		return nil, err
	}
	out, err := h.processPayment.Execute(ctx, dto.ProcessPaymentInput{
		AccountID:          req.AccountID,
		Amount:             req.Amount,
		Denomination:       req.Denomination,
		Outbound:           req.Outbound,
		PaymentType:        req.PaymentType,
		InterestAdjustment: req.InterestAdjustment,
		EffectiveAt:        at,
	})
	if err != nil {
		return nil, h.toStatus("process payment", err)
	}

	h.metrics.Invocations.WithLabelValues("PAYMENT_RECEIVED").Inc()
	if out.Accepted {
		h.metrics.PostingsEmitted.WithLabelValues("PAYMENT_RECEIVED").Add(float64(out.PostingCount))
	} else {
		h.metrics.Rejections.WithLabelValues(out.RejectionCategory).Inc()
	}

	return &ProcessPaymentResponse{
		AccountID:         out.AccountID,
		Accepted:          out.Accepted,
		RejectionCategory: out.RejectionCategory,
		RejectionReason:   out.RejectionReason,
		Closed:            out.Closed,
		PostingCount:      out.PostingCount,
	}, nil
}

func (h *MortgageHandler) RunScheduledTick(ctx context.Context, req *RunScheduledTickRequest) (*RunScheduledTickResponse, error) {
	at, err := parseEffectiveAt(req.EffectiveAt)
	if err != nil {
		return nil, err
	}
	out, err := h.runScheduledTick.Execute(ctx, dto.RunScheduledTickInput{
		AccountID:   req.AccountID,
		Kind:        req.Kind,
		EffectiveAt: at,
	})
	if err != nil {
		return nil, h.toStatus("run scheduled tick", err)
	}
	h.metrics.Invocations.WithLabelValues(req.Kind).Inc()
	h.metrics.PostingsEmitted.WithLabelValues(req.Kind).Add(float64(out.PostingCount))
	return &RunScheduledTickResponse{
		AccountID:     out.AccountID,
		Kind:          out.Kind,
		PostingCount:  out.PostingCount,
		Notifications: out.Notifications,
	}, nil
}

func (h *MortgageHandler) ChangeParameters(ctx context.Context, req *ChangeParametersRequest) (*ChangeParametersResponse, error) {
	at, err := parseEffectiveAt(req.EffectiveAt)
	if err != nil {
		return nil, err
	}
	out, err := h.changeParameters.Execute(ctx, dto.ChangeParametersInput{
		AccountID:              req.AccountID,
		BillingDay:             req.BillingDay,
		VariableRateAdjustment: req.VariableRateAdjustment,
		EffectiveAt:            at,
	})
	if err != nil {
		return nil, h.toStatus("change parameters", err)
	}
	if !out.Accepted {
		h.metrics.Rejections.WithLabelValues(out.RejectionCategory).Inc()
	}
	return &ChangeParametersResponse{
		AccountID:         out.AccountID,
		Accepted:          out.Accepted,
		RejectionCategory: out.RejectionCategory,
		RejectionReason:   out.RejectionReason,
	}, nil
}

func (h *MortgageHandler) ConvertProduct(ctx context.Context, req *ConvertProductRequest) (*ConvertProductResponse, error) {
	at, err := parseEffectiveAt(req.EffectiveAt)
	if err != nil {
		return nil, err
	}
	out, err := h.convertProduct.Execute(ctx, dto.ConvertProductInput{
		AccountID:              req.AccountID,
		TotalTermMonths:        req.TotalTermMonths,
		InterestOnlyTermMonths: req.InterestOnlyTermMonths,
		FixedRateTermMonths:    req.FixedRateTermMonths,
		FixedAnnualRate:        req.FixedAnnualRate,
		VariableRateAdjustment: req.VariableRateAdjustment,
		OverpaymentImpact:      req.OverpaymentImpact,
		EffectiveAt:            at,
	})
	if err != nil {
		return nil, h.toStatus("convert product", err)
	}
	h.metrics.Invocations.WithLabelValues("PRODUCT_CONVERTED").Inc()
	return &ConvertProductResponse{AccountID: out.AccountID, Status: out.Status}, nil
}

func (h *MortgageHandler) CloseAccount(ctx context.Context, req *CloseAccountRequest) (*CloseAccountResponse, error) {
	at, err := parseEffectiveAt(req.EffectiveAt)
	if err != nil {
		return nil, err
	}
	out, err := h.closeAccount.Execute(ctx, dto.CloseAccountInput{
		AccountID:   req.AccountID,
		EffectiveAt: at,
	})
	if err != nil {
		return nil, h.toStatus("close account", err)
	}
	return &CloseAccountResponse{AccountID: out.AccountID, Status: out.Status}, nil
}

func (h *MortgageHandler) GetBalances(ctx context.Context, req *GetBalancesRequest) (*GetBalancesResponse, error) {
	out, err := h.getBalances.Execute(ctx, dto.GetBalancesInput{AccountID: req.AccountID})
	if err != nil {
		return nil, h.toStatus("get balances", err)
	}
	return &GetBalancesResponse{
		AccountID:        out.AccountID,
		Denomination:     out.Denomination,
		Balances:         out.Balances,
		TotalOutstanding: out.TotalOutstanding,
	}, nil
}

func (h *MortgageHandler) toStatus(op string, err error) error {
	if errors.Is(err, port.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	h.logger.Error(op, "error", err)
	return status.Errorf(codes.Internal, "%s: %v", op, err)
}

func parseEffectiveAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, status.Error(codes.InvalidArgument, fmt.Sprintf("invalid effective_at: %v", err))
	}
	return at.UTC(), nil
}
