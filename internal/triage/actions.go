package triage

import (
	"fmt"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

type actionKey struct {
	category domain.ComplaintCategory
	priority domain.ComplaintPriority
}

type action struct {
	lead   string
	follow string
}

var actions = map[actionKey]action{
	{domain.CategoryBilling, domain.PriorityHigh}:   {"Escalate to billing specialist", "Review billing records and prepare a refund or credit authorization."},
	{domain.CategoryBilling, domain.PriorityMedium}: {"Assign to senior billing support", "Verify the payment transaction and send an itemized statement."},
	{domain.CategoryBilling, domain.PriorityLow}:    {"Route to billing support queue", "Send billing clarification and schedule a follow-up if needed."},

	{domain.CategoryDelivery, domain.PriorityHigh}:   {"Escalate to logistics manager", "Trace the shipment with the courier and offer expedited replacement."},
	{domain.CategoryDelivery, domain.PriorityMedium}: {"Assign to delivery resolution team", "Request a tracking update and share an estimated delivery window."},
	{domain.CategoryDelivery, domain.PriorityLow}:    {"Send tracking status to customer", "Set a delivery expectation window and share support contacts."},

	{domain.CategoryTechnicalSupport, domain.PriorityHigh}:   {"Assign senior engineer", "Provide a workaround and schedule a screen-sharing session."},
	{domain.CategoryTechnicalSupport, domain.PriorityMedium}: {"Assign to technical support specialist", "Request logs or screenshots and send a troubleshooting guide."},
	{domain.CategoryTechnicalSupport, domain.PriorityLow}:    {"Forward to product development team", "Log the request in the feature backlog and thank the customer."},

	{domain.CategoryProductQuality, domain.PriorityHigh}:   {"Escalate to quality assurance manager", "Arrange a free return label and offer a replacement."},
	{domain.CategoryProductQuality, domain.PriorityMedium}: {"Assign to quality control team", "Request product photos and offer exchange or refund options."},
	{domain.CategoryProductQuality, domain.PriorityLow}:    {"Record quality feedback", "Share feedback with the supplier and confirm receipt to the customer."},

	{domain.CategoryServiceQuality, domain.PriorityHigh}:   {"Manager to call customer", "Review the service interaction and offer an apology with compensation."},
	{domain.CategoryServiceQuality, domain.PriorityMedium}: {"Assign to customer service supervisor", "Review service standards with the team and request detailed feedback."},
	{domain.CategoryServiceQuality, domain.PriorityLow}:    {"Forward to service training department", "Use the feedback for coaching and send a satisfaction survey."},

	{domain.CategoryRefund, domain.PriorityHigh}:   {"Escalate to finance for urgent refund", "Verify eligibility and send a refund confirmation."},
	{domain.CategoryRefund, domain.PriorityMedium}: {"Assign to refunds team", "Review return policy compliance and share refund tracking information."},
	{domain.CategoryRefund, domain.PriorityLow}:    {"Acknowledge refund request", "Confirm refund status and request feedback on the experience."},

	{domain.CategoryAccount, domain.PriorityHigh}:   {"Escalate to IT security team", "Verify identity, restore access, and monitor for suspicious activity."},
	{domain.CategoryAccount, domain.PriorityMedium}: {"Assign to account support specialist", "Send a password reset link and an account recovery guide."},
	{domain.CategoryAccount, domain.PriorityLow}:    {"Send account self-service guide", "Confirm the account details and offer a verification callback."},
}

var fallbackActions = map[domain.ComplaintPriority]action{
	domain.PriorityHigh:   {"Call customer and escalate to department manager", "Offer an immediate solution or compensation."},
	domain.PriorityMedium: {"Email customer and assign to senior specialist", "Review compensation options."},
	domain.PriorityLow:    {"Route to standard queue", "Acknowledge and thank the customer."},
}

// SuggestedAction returns the recommended first step for a complaint. Every
// (category, priority) pair has an entry; unknown inputs get a generic action.
func (e *Engine) SuggestedAction(category domain.ComplaintCategory, priority domain.ComplaintPriority) string {
	act, ok := actions[actionKey{category, priority}]
	if !ok {
		act, ok = fallbackActions[priority]
		if !ok {
			act = fallbackActions[domain.PriorityLow]
		}
		if category.Valid() {
			act.follow = strings.TrimSuffix(act.follow, ".") + fmt.Sprintf(" and assign to the %s department.", category)
		}
	}
	return fmt.Sprintf("%s within %s. %s", act.lead, hoursLabel(e.policy.Hours(priority)), act.follow)
}

func hoursLabel(h int) string {
	if h == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", h)
}
