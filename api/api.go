package api

import (
	"log/slog"
	"net/http"

	"github.com/Satish-vaishyar/Collage-Events/email"
	"github.com/Satish-vaishyar/Collage-Events/events"
	"github.com/Satish-vaishyar/Collage-Events/payments"
	"github.com/Satish-vaishyar/Collage-Events/registration"
	"github.com/getkin/kin-openapi/openapi3"
)

type Environment string

const (
	LOCAL Environment = "LOCAL"
	PROD  Environment = "PROD"
)

const fromEmailAddress = "Collage Events <noreply@collage-events.in>"

type DB interface {
	events.Repository
	registration.Repository
}

type API struct {
	db             DB
	logger         *slog.Logger
	env            Environment
	gateway        payments.Gateway
	verifier       payments.SignatureVerifier
	emailSender    email.Sender
	authValidator  TokenValidator
	googleClientID string
}

func NewAPI(db DB, logger *slog.Logger, env Environment, gateway payments.Gateway, verifier payments.SignatureVerifier, emailSender email.Sender, authValidator TokenValidator, googleClientID string) *API {
	return &API{
		db:             db,
		logger:         logger,
		env:            env,
		gateway:        gateway,
		verifier:       verifier,
		emailSender:    emailSender,
		authValidator:  authValidator,
		googleClientID: googleClientID,
	}
}

// Routes wires every handler behind the middleware chain. The webhook
// middleware sits outside the OpenAPI validator on purpose: gateway
// deliveries are authenticated by signature, not by the public API schema.
func (a *API) Routes(swagger *openapi3.T) http.Handler {
	r := http.NewServeMux()

	r.HandleFunc("GET /events", a.getEvents)
	r.HandleFunc("POST /events", a.requireOrganizer(a.postEvents))
	r.HandleFunc("GET /events/{id}", a.getEvent)
	r.HandleFunc("GET /events/{id}/registrations", a.requireOrganizer(a.getEventRegistrations))
	r.HandleFunc("POST /registrations", a.postRegistrations)
	r.HandleFunc("POST /registrations/checkout-started", a.postCheckoutStarted)
	r.HandleFunc("POST /registrations/verify-payment", a.postVerifyPayment)
	r.HandleFunc("POST /registrations/expire", a.requireOrganizer(a.postExpireRegistration))

	return useMiddlewares(r,
		a.openapiValidateMiddleware(swagger),
		a.razorpayWebhookMiddleware("/webhooks/razorpay"),
		a.requestIdMiddleware(),
		a.loggingMiddleware(),
		a.corsMiddleware(),
	)
}
