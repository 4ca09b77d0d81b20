package api

import "fmt"

// PaymentDetails holds the card fields collected by the payment step.
type PaymentDetails struct {
	CardNumber     string
	ExpirationDate string
	CVV            string
	CardHolderName string
}

// BillingDetails holds the address fields collected by the billing step.
type BillingDetails struct {
	Address    string
	City       string
	PostalCode string
	Country    string
}

// WizardState is the complete state of one checkout wizard. It is a
// plain value: Reduce returns a fresh copy and never mutates its input,
// and the detail sub-structs are always fully present.
//
// Step is a 1-based position in the linear flow and is always >= 1.
// Err is nil until a SetError dispatch stores a value; it is cleared
// the same way, by dispatching SetError with a nil payload.
type WizardState struct {
	Step      int
	Payment   PaymentDetails
	Billing   BillingDetails
	IsLoading bool
	Err       any
}

// InitialWizardState returns the state every new session starts from:
// step 1, empty details, not loading, no error.
func InitialWizardState() WizardState {
	return WizardState{Step: 1}
}

// WizardAction is the closed set of state transitions a wizard accepts.
// The interface is sealed; only the variants in this package satisfy it,
// so a type switch over them is exhaustive by construction.
type WizardAction interface {
	actionType() string
}

// ActionType returns the symbolic name of an action variant, e.g.
// "SET_STEP". Useful for logging and error messages.
func ActionType(a WizardAction) string {
	if a == nil {
		return "<nil>"
	}
	return a.actionType()
}

// SetStep replaces the wizard's step with Step.
type SetStep struct {
	Step int
}

// PaymentDetailsPatch is a partial update of PaymentDetails. Nil fields
// are left untouched by the merge.
type PaymentDetailsPatch struct {
	CardNumber     *string
	ExpirationDate *string
	CVV            *string
	CardHolderName *string
}

// SetPaymentDetails shallow-merges Patch into the payment details.
type SetPaymentDetails struct {
	Patch PaymentDetailsPatch
}

// BillingDetailsPatch is a partial update of BillingDetails. Nil fields
// are left untouched by the merge.
type BillingDetailsPatch struct {
	Address    *string
	City       *string
	PostalCode *string
	Country    *string
}

// SetBillingDetails shallow-merges Patch into the billing details.
type SetBillingDetails struct {
	Patch BillingDetailsPatch
}

// SetLoading replaces the loading flag.
type SetLoading struct {
	Loading bool
}

// SetError replaces the error value. A nil Err clears it.
type SetError struct {
	Err any
}

func (SetStep) actionType() string           { return "SET_STEP" }
func (SetPaymentDetails) actionType() string { return "SET_PAYMENT_DETAILS" }
func (SetBillingDetails) actionType() string { return "SET_BILLING_DETAILS" }
func (SetLoading) actionType() string        { return "SET_LOADING" }
func (SetError) actionType() string          { return "SET_ERROR" }

// Reduce applies action to state and returns the resulting state.
//
// Reduce is pure: it performs no I/O and never mutates state; every
// call produces a complete new value. An action outside the known
// variants fails with UnknownActionError rather than being silently
// ignored.
func Reduce(state WizardState, action WizardAction) (WizardState, error) {
	switch a := action.(type) {
	case SetStep:
		if a.Step < 1 {
			return state, fmt.Errorf("wizard: step must be >= 1, got %d", a.Step)
		}
		state.Step = a.Step
		return state, nil

	case SetPaymentDetails:
		if a.Patch.CardNumber != nil {
			state.Payment.CardNumber = *a.Patch.CardNumber
		}
		if a.Patch.ExpirationDate != nil {
			state.Payment.ExpirationDate = *a.Patch.ExpirationDate
		}
		if a.Patch.CVV != nil {
			state.Payment.CVV = *a.Patch.CVV
		}
		if a.Patch.CardHolderName != nil {
			state.Payment.CardHolderName = *a.Patch.CardHolderName
		}
		return state, nil

	case SetBillingDetails:
		if a.Patch.Address != nil {
			state.Billing.Address = *a.Patch.Address
		}
		if a.Patch.City != nil {
			state.Billing.City = *a.Patch.City
		}
		if a.Patch.PostalCode != nil {
			state.Billing.PostalCode = *a.Patch.PostalCode
		}
		if a.Patch.Country != nil {
			state.Billing.Country = *a.Patch.Country
		}
		return state, nil

	case SetLoading:
		state.IsLoading = a.Loading
		return state, nil

	case SetError:
		state.Err = a.Err
		return state, nil

	default:
		return state, &UnknownActionError{Type: fmt.Sprintf("%T", action)}
	}
}

// Ptr returns a pointer to v. It keeps patch construction terse:
//
//	api.SetPaymentDetails{Patch: api.PaymentDetailsPatch{
//	    CardNumber: api.Ptr("4242424242424242"),
//	}}
func Ptr[T any](v T) *T {
	return &v
}
