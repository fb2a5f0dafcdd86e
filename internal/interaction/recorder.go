package interaction

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/salaohub/salon-scheduler/internal/models"
)

type Event struct {
	SalonID *uint
	Channel string
	Number  string

	Inbound  string
	Outbound string

	UsedLLM bool
	Latency time.Duration
	Success bool
	IsLead  bool
}

// Recorder persiste registros de atendimento fora do caminho da
// requisição: fila em canal com worker próprio, descarte quando cheia
// (o atendimento nunca quebra por causa do log).
type Recorder struct {
	db    *gorm.DB
	queue chan Event
}

func NewRecorder(db *gorm.DB) *Recorder {
	r := &Recorder{
		db:    db,
		queue: make(chan Event, 100),
	}

	go r.worker()
	return r
}

func (r *Recorder) worker() {
	for ev := range r.queue {
		if err := r.write(ev); err != nil {
			log.Println("interaction error:", err)
		}
	}
}

func (r *Recorder) Record(ev Event) {
	select {
	case r.queue <- ev:
		// enviado
	default:
		log.Println("interaction queue full, dropping event")
	}
}

func (r *Recorder) write(ev Event) error {
	row := models.Interaction{
		SalonID:        ev.SalonID,
		Channel:        ev.Channel,
		Number:         ev.Number,
		Inbound:        ev.Inbound,
		Outbound:       ev.Outbound,
		UsedLLM:        ev.UsedLLM,
		LatencySeconds: ev.Latency.Seconds(),
		Success:        ev.Success,
		IsLead:         ev.IsLead,
	}

	return r.db.Create(&row).Error
}
