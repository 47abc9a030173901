package chat

import (
	"github.com/muhallimir/aims-commerce-chat/internal/domain/chat"
	"go.uber.org/zap"
)

// Identity and body of the automated reply a customer receives when no
// administrator is reachable. The body matches the storefront client's
// expectations and must not change without a coordinated frontend release.
const (
	SystemIdentity = "Administrator"
	AwayReplyBody  = "Sorry. I am not online right now"
)

// Message is an inbound chat message as handed to the router. SenderIdentity
// comes from the sender's identified session, not from the wire payload.
type Message struct {
	SenderIdentity        string
	SenderIsAdministrator bool
	TargetIdentity        string
	Body                  string
}

// MessageRouter decides which single participant receives an inbound chat
// message. Delivery is at-most-once and best-effort; a routing miss is
// resolved by a silent drop (administrator to customer) or an automated
// reply (customer to administrator), never by an error to the caller.
type MessageRouter struct {
	registry *chat.Registry
	logger   *zap.Logger
	metrics  Metrics
}

// NewMessageRouter creates a new MessageRouter
func NewMessageRouter(registry *chat.Registry, logger *zap.Logger, metrics Metrics) *MessageRouter {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &MessageRouter{
		registry: registry,
		logger:   logger,
		metrics:  metrics,
	}
}

// Route delivers the message to its single recipient. Messages from one
// sender are delivered in the order Route is invoked.
func (r *MessageRouter) Route(msg Message) {
	if msg.SenderIsAdministrator {
		r.routeToCustomer(msg)
		return
	}
	r.routeToAdministrator(msg)
}

// routeToCustomer handles administrator-sent messages. The target customer
// must be online; otherwise the message is dropped without signaling the
// administrator, matching the original wire behavior. The drop is still
// counted and logged so the gap stays diagnosable.
func (r *MessageRouter) routeToCustomer(msg Message) {
	customer := r.registry.FindOnlineCustomer(msg.TargetIdentity)
	if customer == nil {
		r.metrics.MessageDropped(DropReasonCustomerOffline)
		r.logger.Debug("message dropped, target customer not online",
			zap.String("target", msg.TargetIdentity),
		)
		return
	}

	out := chat.Message{SenderIdentity: msg.SenderIdentity, Body: msg.Body}
	r.send(customer, chat.NewChatMessage(out))
	r.registry.AppendPending(customer.Identity, out)
	r.metrics.MessageRouted(DirectionAdminToCustomer)
}

// routeToAdministrator handles customer-sent messages. History is buffered
// on the sending customer's entry, keyed by customer rather than by
// administrator. Without an active administrator the customer gets the
// automated reply straight back, and nothing is buffered.
func (r *MessageRouter) routeToAdministrator(msg Message) {
	admin := r.registry.FindActiveAdministrator()
	if admin == nil {
		r.sendAutoReply(msg.SenderIdentity)
		return
	}

	out := chat.Message{SenderIdentity: msg.SenderIdentity, Body: msg.Body}
	r.send(admin, chat.NewChatMessage(out))
	r.registry.AppendPending(msg.SenderIdentity, out)
	r.metrics.MessageRouted(DirectionCustomerToAdmin)
}

// sendAutoReply synthesizes the out-of-office message from the fixed system
// identity and delivers it directly back to the sender
func (r *MessageRouter) sendAutoReply(senderIdentity string) {
	sender := r.registry.FindByIdentity(senderIdentity)
	if sender == nil || sender.Conn == nil {
		return
	}
	reply := chat.Message{SenderIdentity: SystemIdentity, Body: AwayReplyBody}
	r.send(sender, chat.NewChatMessage(reply))
	r.metrics.AutoReplySent()
	r.logger.Debug("no administrator online, automated reply sent",
		zap.String("sender", senderIdentity),
	)
}

// send delivers best-effort; the router never retries a stale handle
func (r *MessageRouter) send(to *chat.Participant, event chat.Event) {
	if to.Conn == nil {
		return
	}
	if err := to.Conn.Send(event); err != nil {
		r.metrics.MessageDropped(DropReasonSendFailed)
		r.logger.Debug("message not delivered",
			zap.String("identity", to.Identity),
			zap.Error(err),
		)
	}
}
