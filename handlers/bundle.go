package handlers

// HandlerBundle groups every handler the router needs.
type HandlerBundle struct {
	SessionHandler      *SessionHandler
	AnalysisHandler     *AnalysisHandler
	SettingsHandler     *SettingsHandler
	BookingHandler      *BookingHandler
	SubscriptionHandler *SubscriptionHandler
}
