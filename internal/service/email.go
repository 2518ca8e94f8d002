package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KristianPetrov/1uplabs/internal/client"
	"github.com/KristianPetrov/1uplabs/internal/model"
	"github.com/KristianPetrov/1uplabs/internal/repository"
)

type SendResult string

const (
	SendResultSent       SendResult = "sent"
	SendResultAlready    SendResult = "already-sent"
	SendResultNoProvider SendResult = "skipped-no-provider"
	SendResultFailed     SendResult = "failed"
)

type EmailCategory string

const (
	CategoryReceipt             EmailCategory = "receipt"
	CategoryPaymentInstructions EmailCategory = "paymentInstructions"
	CategoryStatusUpdate        EmailCategory = "statusUpdate"
)

// MailService sends at-most-once transactional order emails. Each category
// has its own audit timestamp on the order; the timestamp is written after
// the transport confirms a send, as a best-effort follow-up, so a crash in
// between can at worst produce one duplicate on retry.
type MailService interface {
	Send(ctx context.Context, category EmailCategory, orderID string) SendResult
}

type mailServiceImpl struct {
	emailClient    client.EmailClient
	orderRepo      repository.OrderRepository
	paymentService PaymentService
	siteURL        string
	logger         *zap.Logger
}

func NewMailService(
	emailClient client.EmailClient,
	orderRepo repository.OrderRepository,
	paymentService PaymentService,
	siteURL string,
	logger *zap.Logger,
) MailService {
	return &mailServiceImpl{
		emailClient:    emailClient,
		orderRepo:      orderRepo,
		paymentService: paymentService,
		siteURL:        siteURL,
		logger:         logger,
	}
}

func auditColumn(category EmailCategory) string {
	switch category {
	case CategoryReceipt:
		return "receipt_email_sent_at"
	case CategoryPaymentInstructions:
		return "payment_instructions_email_sent_at"
	default:
		return "status_email_sent_at"
	}
}

func auditTimestamp(order *model.Order, category EmailCategory) *time.Time {
	switch category {
	case CategoryReceipt:
		return order.ReceiptEmailSentAt
	case CategoryPaymentInstructions:
		return order.PaymentInstructionsEmailSentAt
	default:
		return order.StatusEmailSentAt
	}
}

func (s *mailServiceImpl) Send(ctx context.Context, category EmailCategory, orderID string) SendResult {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		s.logger.Error("load order for email", zap.String("order_id", orderID), zap.Error(err))
		return SendResultFailed
	}

	// Status updates are announced once per transition; the caller clears
	// the audit timestamp when the status actually changes. Receipt and
	// payment instructions are once per order, full stop.
	if auditTimestamp(order, category) != nil {
		return SendResultAlready
	}

	if !s.emailClient.Enabled() {
		s.logger.Warn("email provider not configured, skipping send",
			zap.String("order_id", orderID), zap.String("category", string(category)))
		return SendResultNoProvider
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		s.logger.Error("load order items for email", zap.String("order_id", orderID), zap.Error(err))
		return SendResultFailed
	}

	subject, htmlBody, textBody := s.compose(ctx, category, order, items)

	if err := s.emailClient.Send(ctx, order.Email, subject, htmlBody, textBody); err != nil {
		s.logger.Error("send email", zap.String("order_id", orderID),
			zap.String("category", string(category)), zap.Error(err))
		return SendResultFailed
	}

	// Best-effort audit write. Failure here is logged, not propagated: the
	// email went out and the order must not be failed over bookkeeping.
	if err := s.orderRepo.MarkEmailSentAt(ctx, orderID, auditColumn(category), time.Now()); err != nil {
		s.logger.Warn("persist email audit timestamp",
			zap.String("order_id", orderID), zap.String("category", string(category)), zap.Error(err))
	}

	return SendResultSent
}

func (s *mailServiceImpl) compose(ctx context.Context, category EmailCategory, order *model.Order, items []*model.OrderItem) (subject, htmlBody, textBody string) {
	orderNumber := OrderNumber(order.ID)

	switch category {
	case CategoryReceipt:
		subject = fmt.Sprintf("Receipt for order #%s", orderNumber)
		htmlBody = s.receiptHTML(ctx, order, items)
		textBody = s.receiptText(ctx, order, items)
	case CategoryPaymentInstructions:
		subject = fmt.Sprintf("Payment instructions for order #%s", orderNumber)
		htmlBody = s.paymentInstructionsHTML(ctx, order)
		textBody = s.paymentInstructionsText(ctx, order)
	default:
		subject = fmt.Sprintf("Order #%s is now %s", orderNumber, order.Status.Display())
		htmlBody = s.statusHTML(order)
		textBody = s.statusText(order)
	}

	return subject, htmlBody, textBody
}

func (s *mailServiceImpl) orderURL(orderID string) string {
	return fmt.Sprintf("%s/orders/%s/thank-you", s.siteURL, orderID)
}

func esc(v string) string {
	return html.EscapeString(v)
}

func renderLayoutHTML(title, subtitle, bodyHTML, ctaLabel, ctaHref string) string {
	return fmt.Sprintf(`<div style="font-family:Inter,system-ui,sans-serif;background:#07090d;padding:24px;color:#e5e7eb">
<div style="max-width:640px;margin:0 auto;border:1px solid rgba(255,255,255,0.12);border-radius:16px;background:#10131a;padding:24px">
<div style="font-size:12px;text-transform:uppercase;letter-spacing:0.18em;color:#9ca3af">1UpLabs</div>
<h1 style="margin:10px 0 6px;font-size:26px;color:#fff">%s</h1>
<p style="margin:0 0 18px;color:#cbd5e1">%s</p>
%s
<div style="margin-top:20px"><a href="%s" style="display:inline-block;background:#10b981;color:#041014;text-decoration:none;padding:10px 16px;border-radius:9999px;font-weight:700">%s</a></div>
</div>
</div>`, esc(title), esc(subtitle), bodyHTML, esc(ctaHref), esc(ctaLabel))
}

func renderItemsHTML(items []*model.OrderItem) string {
	var rows strings.Builder
	for _, item := range items {
		rows.WriteString(fmt.Sprintf(`<tr>
<td style="padding:8px 0;color:#f8fafc">%s %s</td>
<td style="padding:8px 0;color:#cbd5e1;text-align:right">%d x %s</td>
<td style="padding:8px 0;color:#f8fafc;text-align:right;font-weight:600">%s</td>
</tr>`,
			esc(item.ProductName), esc(item.ProductAmount),
			item.Qty, esc(FormatUSDFromCents(item.UnitPriceCents)),
			esc(FormatUSDFromCents(item.LineTotalCents))))
	}

	return fmt.Sprintf(`<table style="width:100%%;border-collapse:collapse;background:#0b0f16"><tbody>%s</tbody></table>`, rows.String())
}

func (s *mailServiceImpl) renderPaymentMethodsHTML(ctx context.Context, order *model.Order) string {
	methods := s.paymentService.Methods(ctx, order.ID, order.TotalCents)
	memo := s.paymentService.Memo(order.ID)

	var blocks strings.Builder
	for _, method := range methods {
		link := ""
		if method.PaymentURL != nil {
			link = fmt.Sprintf(`<div style="margin-top:4px"><a href="%s" style="color:#34d399">Open %s link</a></div>`,
				esc(*method.PaymentURL), esc(method.Title))
		}
		blocks.WriteString(fmt.Sprintf(`<div style="padding:12px;border:1px solid rgba(255,255,255,0.12);border-radius:10px;background:#0b0f16;margin-top:10px">
<div style="font-weight:700;color:#f8fafc">%s</div>
<div style="margin-top:4px;color:#cbd5e1">%s: %s</div>
<div style="margin-top:4px;color:#94a3b8">%s</div>
%s
</div>`, esc(method.Title), esc(method.DestinationLabel), esc(method.DestinationValue), esc(method.Note), link))
	}

	return fmt.Sprintf(`<div style="margin-top:16px">
<div style="color:#f8fafc;font-weight:700">Manual payment methods</div>
%s
<div style="margin-top:12px;color:#cbd5e1">Memo to include: <strong style="color:#fff">%s</strong></div>
<div style="margin-top:4px;color:#94a3b8">For Zelle, add your Order ID in the memo before sending.</div>
</div>`, blocks.String(), esc(memo))
}

func (s *mailServiceImpl) receiptText(ctx context.Context, order *model.Order, items []*model.OrderItem) string {
	lines := []string{
		fmt.Sprintf("Thanks for your order #%s.", OrderNumber(order.ID)),
		"",
		fmt.Sprintf("Order ID: %s", order.ID),
		fmt.Sprintf("Total: %s", FormatUSDFromCents(order.TotalCents)),
		fmt.Sprintf("Status: %s", order.Status.Display()),
		fmt.Sprintf("Order page: %s", s.orderURL(order.ID)),
		"",
		"Items:",
	}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s %s: %d x %s = %s",
			item.ProductName, item.ProductAmount, item.Qty,
			FormatUSDFromCents(item.UnitPriceCents), FormatUSDFromCents(item.LineTotalCents)))
	}
	lines = append(lines, "", s.paymentService.InstructionsText(ctx, order.ID, order.TotalCents))

	return strings.Join(lines, "\n")
}

func (s *mailServiceImpl) receiptHTML(ctx context.Context, order *model.Order, items []*model.OrderItem) string {
	body := fmt.Sprintf(`<div style="color:#e2e8f0">
<div style="margin-bottom:10px">Order number: <strong style="color:#fff">#%s</strong></div>
<div style="margin-bottom:10px">Order ID: <span style="color:#fff">%s</span></div>
<div style="margin-bottom:16px">Total: <strong style="color:#fff">%s</strong></div>
%s
%s
</div>`, esc(OrderNumber(order.ID)), esc(order.ID), esc(FormatUSDFromCents(order.TotalCents)),
		renderItemsHTML(items), s.renderPaymentMethodsHTML(ctx, order))

	return renderLayoutHTML("Thanks for your order",
		"Your order is now received and pending payment.",
		body, "Open your thank-you page", s.orderURL(order.ID))
}

func (s *mailServiceImpl) paymentInstructionsText(ctx context.Context, order *model.Order) string {
	return strings.Join([]string{
		fmt.Sprintf("Payment instructions for order #%s.", OrderNumber(order.ID)),
		"",
		fmt.Sprintf("Order ID: %s", order.ID),
		fmt.Sprintf("Total: %s", FormatUSDFromCents(order.TotalCents)),
		fmt.Sprintf("Order page: %s", s.orderURL(order.ID)),
		"",
		s.paymentService.InstructionsText(ctx, order.ID, order.TotalCents),
	}, "\n")
}

func (s *mailServiceImpl) paymentInstructionsHTML(ctx context.Context, order *model.Order) string {
	body := fmt.Sprintf(`<div style="color:#e2e8f0">
<div style="margin-bottom:10px">Order number: <strong style="color:#fff">#%s</strong></div>
<div style="margin-bottom:10px">Order ID: <span style="color:#fff">%s</span></div>
<div style="margin-bottom:16px">Total: <strong style="color:#fff">%s</strong></div>
%s
</div>`, esc(OrderNumber(order.ID)), esc(order.ID), esc(FormatUSDFromCents(order.TotalCents)),
		s.renderPaymentMethodsHTML(ctx, order))

	return renderLayoutHTML("Payment instructions",
		"Use any one of the methods below to complete your payment.",
		body, "Open your thank-you page", s.orderURL(order.ID))
}

func (s *mailServiceImpl) statusText(order *model.Order) string {
	lines := []string{
		fmt.Sprintf("Your order #%s status changed.", OrderNumber(order.ID)),
		"",
		fmt.Sprintf("Order ID: %s", order.ID),
		fmt.Sprintf("New status: %s", order.Status.Display()),
		fmt.Sprintf("Total: %s", FormatUSDFromCents(order.TotalCents)),
	}

	if order.Status == model.StatusShipped {
		lines = append(lines,
			fmt.Sprintf("Carrier: %s", strPtrOr(order.MailService, "n/a")),
			fmt.Sprintf("Tracking number: %s", strPtrOr(order.TrackingNumber, "n/a")))
	}
	if order.Status == model.StatusPending {
		lines = append(lines,
			"",
			fmt.Sprintf("Complete payment here: %s", s.orderURL(order.ID)),
			fmt.Sprintf("Amount: %s", FormatUSDFromCents(order.TotalCents)),
			fmt.Sprintf("Memo: %s", s.paymentService.Memo(order.ID)))
	}

	return strings.Join(lines, "\n")
}

func (s *mailServiceImpl) statusHTML(order *model.Order) string {
	shippingInfo := ""
	if order.Status == model.StatusShipped {
		shippingInfo = fmt.Sprintf(`<div style="margin-top:12px;padding:12px;border:1px solid rgba(255,255,255,0.12);border-radius:10px;background:#0b0f16">
<div style="color:#f8fafc;font-weight:700">Shipping details</div>
<div style="margin-top:4px;color:#cbd5e1">Carrier: %s</div>
<div style="margin-top:2px;color:#cbd5e1">Tracking number: %s</div>
</div>`, esc(strPtrOr(order.MailService, "n/a")), esc(strPtrOr(order.TrackingNumber, "n/a")))
	}

	body := fmt.Sprintf(`<div style="color:#e2e8f0">
<div style="margin-bottom:10px">Order number: <strong style="color:#fff">#%s</strong></div>
<div style="margin-bottom:10px">Order ID: <span style="color:#fff">%s</span></div>
<div style="margin-bottom:10px">Status: <strong style="color:#fff">%s</strong></div>
<div style="margin-bottom:16px">Total: <strong style="color:#fff">%s</strong></div>
%s
</div>`, esc(OrderNumber(order.ID)), esc(order.ID), esc(order.Status.Display()),
		esc(FormatUSDFromCents(order.TotalCents)), shippingInfo)

	return renderLayoutHTML("Order status updated", "Your order status has changed.",
		body, "Open order details", fmt.Sprintf("%s/orders/%s", s.siteURL, order.ID))
}

func strPtrOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
