package service

import (
	"basegraph.app/rendezvous/core/config"
	"basegraph.app/rendezvous/internal/calendar"
	"basegraph.app/rendezvous/internal/realtime"
	"basegraph.app/rendezvous/internal/store"
)

type Services struct {
	stores   *store.Stores
	txRunner TxRunner
	calendar calendar.Adapter
	emitter  realtime.Emitter
	cfg      config.Config
}

func NewServices(stores *store.Stores, txRunner TxRunner, cal calendar.Adapter, emitter realtime.Emitter, cfg config.Config) *Services {
	return &Services{
		stores:   stores,
		txRunner: txRunner,
		calendar: cal,
		emitter:  emitter,
		cfg:      cfg,
	}
}

func (s *Services) Meetings() MeetingService {
	return NewMeetingService(s.stores.Users(), s.stores.Meetings(), s.txRunner, s.calendar, s.emitter, s.cfg.FrontendURL)
}

func (s *Services) Invitations() InvitationService {
	return NewInvitationService(s.stores.Users(), s.txRunner, s.calendar, s.emitter)
}

func (s *Services) Notifications() NotificationService {
	return NewNotificationService(s.stores.Notifications())
}

func (s *Services) Sessions() SessionService {
	return NewSessionService(s.stores.Users(), s.cfg.JWTSecret)
}

func (s *Services) Watches() WatchService {
	return NewWatchService(s.stores.WatchChannels(), s.calendar, s.cfg.Webhook.CallbackURL())
}

func (s *Services) Reconciler() Reconciler {
	return NewReconciler(s.stores.Users(), s.stores.Meetings(), s.stores.WatchChannels(), s.txRunner, s.calendar, s.emitter)
}
