package chat

// Metrics is the observability hook for the presence and routing services.
// Routing misses keep their silent wire behavior; the hook makes them
// diagnosable without changing what participants observe.
type Metrics interface {
	ParticipantConnected(role string)
	ParticipantDisconnected(role string)
	MessageRouted(direction string)
	MessageDropped(reason string)
	AutoReplySent()
}

// Routing directions and drop reasons reported to the Metrics hook
const (
	DirectionAdminToCustomer = "admin_to_customer"
	DirectionCustomerToAdmin = "customer_to_admin"

	DropReasonCustomerOffline = "customer_offline"
	DropReasonSendFailed      = "send_failed"
)

// NopMetrics discards every observation
type NopMetrics struct{}

func (NopMetrics) ParticipantConnected(string)    {}
func (NopMetrics) ParticipantDisconnected(string) {}
func (NopMetrics) MessageRouted(string)           {}
func (NopMetrics) MessageDropped(string)          {}
func (NopMetrics) AutoReplySent()                 {}
