package convstore

import (
	"context"

	"github.com/salaohub/salon-scheduler/internal/llm"
)

// Store guarda o contexto volátil de cada conversa fora do processo,
// para que múltiplos workers enxerguem o mesmo histórico.
type Store interface {
	// History devolve as últimas mensagens da conversa, mais antigas primeiro
	History(ctx context.Context, convID string) ([]llm.Message, error)

	// Append acrescenta mensagens e poda o histórico ao limite configurado
	Append(ctx context.Context, convID string, msgs ...llm.Message) error

	// Dialog devolve o estado serializado do diálogo de agendamento,
	// ou nil se não houver diálogo em andamento
	Dialog(ctx context.Context, convID string) ([]byte, error)

	SetDialog(ctx context.Context, convID string, state []byte) error

	ClearDialog(ctx context.Context, convID string) error
}
