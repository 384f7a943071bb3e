package ticketrule

import "dropindrop/internal/domain"

// CanPickup é verdadeiro somente para pagamento PAID com retirada PENDING.
// Valores fora das enumerações nunca liberam a retirada.
func CanPickup(state domain.OrderState) bool {
	switch state.PaymentStatus {
	case domain.PaymentPaid:
		switch state.PickupStatus {
		case domain.PickupPending:
			return true
		case domain.PickupPickedUp, domain.PickupCancelled:
			return false
		}
	case domain.PaymentPending, domain.PaymentFailed, domain.PaymentRefunded:
		return false
	}
	return false
}

var paymentTransitions = map[domain.PaymentStatus][]domain.PaymentStatus{
	domain.PaymentPending: {domain.PaymentPaid, domain.PaymentFailed},
	domain.PaymentPaid:    {domain.PaymentRefunded},
}

var pickupTransitions = map[domain.PickupStatus][]domain.PickupStatus{
	domain.PickupPending: {domain.PickupPickedUp, domain.PickupCancelled},
}

// CanTransitionPayment indica se o pagamento pode passar de from para to.
// FAILED e REFUNDED são terminais.
func CanTransitionPayment(from, to domain.PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPickup indica se a retirada pode passar de from para to.
// PICKED_UP e CANCELLED são terminais.
func CanTransitionPickup(from, to domain.PickupStatus) bool {
	for _, next := range pickupTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
