// Package models defines funnel type definitions to avoid circular imports.
package models

// StateType represents a specific state within the sales funnel.
type StateType string

// DataKey represents a key for storing conversation-specific data.
type DataKey string

// EventType tags the kind of event the customer is planning.
type EventType string

// State constants for the sales funnel, initial to terminal.
const (
	StateInitialContact     StateType = "INITIAL_CONTACT"
	StateEventTypeWait      StateType = "EVENT_TYPE_WAIT"
	StatePackageConfirmWait StateType = "PACKAGE_CONFIRM_WAIT"
	StateServicesWait       StateType = "SERVICES_WAIT"
	StateCabinTypeWait      StateType = "CABIN_TYPE_WAIT"
	StateConfirmAddCabin    StateType = "CONFIRM_ADD_CABIN_WAIT"
	StateLetterCountWait    StateType = "LETTER_COUNT_WAIT"
	StateSparklerCountWait  StateType = "SPARKLER_COUNT_WAIT"
	StateCartVariantWait    StateType = "CART_VARIANT_WAIT"
	StateConfirmAddCart     StateType = "CONFIRM_ADD_CART_WAIT"
	StateQuoteFollowupWait  StateType = "QUOTE_FOLLOWUP_WAIT"
	StateDateWait           StateType = "DATE_WAIT"
	StateVenueWait          StateType = "VENUE_WAIT"
	StateFinalized          StateType = "FINALIZED"
)

// Event type constants.
const (
	EventTypeWedding    EventType = "boda"
	EventTypeQuinceanera EventType = "quinceanera"
	EventTypeOther      EventType = "otro"
)

// Data key constants for conversation data.
const (
	DataKeyEventType          DataKey = "eventType"
	DataKeyRecommendedPackage DataKey = "recommendedPackage" // JSON RecommendedPackage
	DataKeySelectedServices   DataKey = "selectedServices"   // canonical comma-joined tokens
	DataKeyEventDate          DataKey = "eventDate"          // display form DD/MM/YYYY
	DataKeyEventDateISO       DataKey = "eventDateISO"       // YYYY-MM-DD
	DataKeyVenue              DataKey = "venue"
	DataKeyMediaSent          DataKey = "mediaSent"      // JSON array of service keys
	DataKeyUpsellSuggested    DataKey = "upsellSuggested" // "1" once the nudge was sent
	DataKeyPendingCabin       DataKey = "pendingCabin"    // "1" while cabin type is unresolved
	DataKeyPendingLetters     DataKey = "pendingLetters"  // "1" while letter count is unresolved
	DataKeyPendingSparklers   DataKey = "pendingSparklers" // "1" while sparkler count is unresolved
	DataKeyPendingCart        DataKey = "pendingCart"      // "1" while cart variant is unresolved
	DataKeyPendingAddition    DataKey = "pendingAddition"  // variant awaiting duplicate-add confirmation
)
