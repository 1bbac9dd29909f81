package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/event"
)

// EventPublisher puerto de salida para las alertas de stock. La entrega es
// responsabilidad del colaborador externo (al-menos-una-vez basta); el caso de uso
// solo garantiza el orden de publicación dentro de una mutación y que nunca se
// publica antes de persistir.
type EventPublisher interface {
	Publish(ctx context.Context, e event.StockAlert) error
}
