// Package amqp implements the message broker interface for AMQP compliant brokers (ie RabbitMQ)
package amqp

import (
	"encoding/json"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/msg"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
)

// Exchanges declared by Setup.
const (
	ReqExchange   = "nr"
	EventExchange = "ne"
)

// Amqp implements a connection to a broker and a channel for reuse.
type Amqp struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// New instantiates a new amqp broker.
func New(uri string) (*Amqp, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, err
	}

	log.WithField("uri", uri).Info("Connected to message broker")

	return &Amqp{conn: conn}, nil
}

// Setup obtains an amqp channel and declares the message broker exchanges:
//
// - nr ("name requests"): the api service publishes resolve requests to this exchange
//
// - ne ("name events"): the resolver service publishes resolved records to this exchange
func (r *Amqp) Setup(x interface{}) error {
	// obtain a one-use channel
	channel, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()

	if err = channel.ExchangeDeclare(ReqExchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}

	return channel.ExchangeDeclare(EventExchange, "topic", true, false, false, false, nil)
}

// Close terminates gracefully the connection to the AMQP message broker
func (r *Amqp) Close() error {
	if r.ch != nil {
		if err := r.ch.Close(); err != nil {
			log.WithError(err).Warn("Error closing amqp.Channel")
		}

		r.ch = nil
	}

	return r.conn.Close()
}

func (r *Amqp) publish(exchange, key string, headers amqp.Table, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	// obtain channel if not present
	if r.ch == nil {
		if r.ch, err = r.conn.Channel(); err != nil {
			return err
		}
	}

	return r.ch.Publish(exchange, key, false, false, amqp.Publishing{
		Headers:     headers,
		Body:        body,
		ContentType: "application/json",
	})
}

// SendResolved publishes resolved records to the "ne" exchange, one message per address.
func (r *Amqp) SendResolved(provider string, recs []names.Domain) (err error) {
	for _, d := range recs {
		key := names.Key(d.Address)
		if err = r.publish(EventExchange, provider+".resolved."+key,
			amqp.Table{"x-name-event": provider + "." + key}, d); err != nil {
			log.WithField("provider", provider).WithError(err).Error("Error sending resolved event to message broker")

			return
		}
	}

	return
}

// SendRequest publishes a new resolve request to the "nr" exchange
func (r *Amqp) SendRequest(provider string, rq msg.ResolveReq) error {
	err := r.publish(ReqExchange, provider+"."+strconv.Itoa(rq.Act)+"."+strconv.Itoa(len(rq.Addrs)),
		amqp.Table{"x-name-req": provider}, rq)
	if err != nil {
		log.WithField("provider", provider).WithError(err).Error("Error sending request to message broker")
	}

	return err
}

// consume binds a durable queue named prefix+provider to the exchange and returns its deliveries.
func (r *Amqp) consume(exchange, provider, consumer string) (<-chan amqp.Delivery, error) {
	var err error
	if r.ch == nil {
		if r.ch, err = r.conn.Channel(); err != nil {
			return nil, err
		}
	}

	queue := exchange + provider
	if _, err = r.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}

	if err = r.ch.QueueBind(queue, provider+".*.*", exchange, false, nil); err != nil {
		return nil, err
	}

	return r.ch.Consume(queue, consumer+"-"+provider, false, false, false, false, nil)
}

// GetEvents consumes resolved records from the "ne" exchange pushing them to the returned channel. A message is only
// acknowledged once the mutex given is unlocked by the managing routine.
func (r *Amqp) GetEvents(provider string, mut *sync.Mutex) (<-chan names.Domain, <-chan error, error) {
	msgs, err := r.consume(EventExchange, provider, "api")
	if err != nil {
		return nil, nil, err
	}

	eves := make(chan names.Domain)
	errs := make(chan error)

	go func() {
		defer close(eves)

		for m := range msgs {
			var d names.Domain
			if err := json.Unmarshal(m.Body, &d); err != nil {
				_ = m.Nack(false, false)
				errs <- err

				continue
			}

			eves <- d

			mut.Lock() // wait for the api to finish processing the event
			_ = m.Ack(false)
		}
	}()

	return eves, errs, nil
}

// GetReqs consumes requests from the "nr" exchange for the specified provider pushing them to the returned channel. A
// message is only acknowledged once the mutex given is unlocked by the managing routine.
func (r *Amqp) GetReqs(provider string, mut *sync.Mutex) (<-chan msg.ResolveReq, <-chan error, error) {
	msgs, err := r.consume(ReqExchange, provider, "resolver")
	if err != nil {
		return nil, nil, err
	}

	reqs := make(chan msg.ResolveReq)
	errs := make(chan error)

	go func() {
		defer close(reqs)

		for m := range msgs {
			var req msg.ResolveReq
			if err := json.Unmarshal(m.Body, &req); err != nil {
				_ = m.Nack(false, false)
				errs <- err

				continue
			}

			reqs <- req

			mut.Lock() // wait for the resolver to finish processing the request
			_ = m.Ack(false)
		}
	}()

	return reqs, errs, nil
}
