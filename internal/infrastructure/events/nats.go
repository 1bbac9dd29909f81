// Package events publica las alertas del libro de stock hacia el subsistema de
// notificaciones a través de NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/event"
)

var _ inventory.EventPublisher = (*NATSPublisher)(nil)

// NATSConfig configuración del publicador NATS.
type NATSConfig struct {
	URL           string // ej. nats://localhost:4222
	SubjectPrefix string // prefijo de subject; default "stock"
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
}

// DefaultNATSConfig valores por defecto del publicador.
func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:           url,
		SubjectPrefix: "stock",
		MaxRetries:    3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
	}
}

// NATSPublisher publica alertas en subjects stock.{warehouse_id}.{nombre_evento},
// serializadas como JSON. Reintenta con backoff ante fallos transitorios; la
// garantía de entrega final es del broker (al-menos-una-vez).
type NATSPublisher struct {
	conn *nats.Conn
	cfg  NATSConfig
}

// ConnectNATS abre la conexión y construye el publicador.
func ConnectNATS(cfg NATSConfig) (*NATSPublisher, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("stock-ledger-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("conectar NATS: %w", err)
	}
	return NewNATSPublisher(conn, cfg), nil
}

// NewNATSPublisher construye el publicador sobre una conexión existente.
func NewNATSPublisher(conn *nats.Conn, cfg NATSConfig) *NATSPublisher {
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "stock"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = time.Second
	}
	return &NATSPublisher{conn: conn, cfg: cfg}
}

// Publish publica una alerta de stock.
func (p *NATSPublisher) Publish(ctx context.Context, e event.StockAlert) error {
	subject := fmt.Sprintf("%s.%s.%s", p.cfg.SubjectPrefix, e.WarehouseID, e.Name)
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("serializar alerta: %w", err)
	}
	return p.publishWithRetry(ctx, subject, data)
}

// publishWithRetry reintenta con backoff exponencial acotado, respetando el contexto.
func (p *NATSPublisher) publishWithRetry(ctx context.Context, subject string, data []byte) error {
	delay := p.cfg.InitialDelay
	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > p.cfg.MaxDelay {
				delay = p.cfg.MaxDelay
			}
		}
		if lastErr = p.conn.Publish(subject, data); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("publicar en %s tras %d intentos: %w", subject, p.cfg.MaxRetries, lastErr)
}

// Close drena y cierra la conexión.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}
