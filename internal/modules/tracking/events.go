package tracking

import (
	"encoding/json"
	"log"

	"fleet-tracking/internal/models"

	"github.com/nats-io/nats.go"
)

// PublisherMetrics is the slice of instrumentation the publisher reports to.
type PublisherMetrics interface {
	EventPublishedInc()
	EventPublishErrInc()
	SetPublisherConnected(up bool)
}

// NATSPublisher fans accepted fixes out to dashboard consumers on
// tracking.positions.<tripID>. Publish failures are counted, never
// propagated: fan-out is best-effort and must not fail ingestion.
type NATSPublisher struct {
	nc      *nats.Conn
	metrics PublisherMetrics
}

// NewNATSPublisher connects to the broker with reconnect handlers wired to
// the metrics gauge.
func NewNATSPublisher(url string, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("fleet-tracking"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetPublisherConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.SetPublisherConnected(true)
			}
			log.Printf("nats reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.SetPublisherConnected(true)
	}
	return &NATSPublisher{nc: nc, metrics: m}, nil
}

func (p *NATSPublisher) PublishPosition(rec *models.PositionRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := p.nc.Publish("tracking.positions."+rec.TripID, data); err != nil {
		if p.metrics != nil {
			p.metrics.EventPublishErrInc()
		}
		return
	}
	if p.metrics != nil {
		p.metrics.EventPublishedInc()
	}
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
