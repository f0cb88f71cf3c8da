package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"i-hire-go/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageQueue is the message broker interface.
type MessageQueue interface {
	// PublishMessage publishes a raw message to an exchange.
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error

	// PublishJSON publishes a JSON-encoded message.
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error

	// EnsureExchange declares an exchange if it has not been declared yet.
	EnsureExchange(exchangeName, exchangeType string, durable bool) error

	// EnsureQueue declares a queue if it has not been declared yet.
	EnsureQueue(queueName string, durable bool) error

	// BindQueue binds a queue to an exchange.
	BindQueue(queueName, exchangeName, routingKey string) error

	// Close closes the connection.
	Close() error
}

var _ MessageQueue = (*RabbitMQ)(nil)

// RabbitMQ provides message queue functionality over a channel pool.
type RabbitMQ struct {
	conn         *amqp.Connection
	channelPool  sync.Pool
	exchangeMap  map[string]bool
	queueMap     map[string]bool
	bindingMap   map[string]bool // key format: "exchange:queue:routingKey"
	publishMutex sync.Mutex
	cfg          *config.RabbitMQConfig
}

// NewRabbitMQ creates a RabbitMQ client.
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("rabbitmq config is required")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("rabbitmq URL is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to RabbitMQ (%s): %w", cfg.URL, err)
	}

	mq := &RabbitMQ{
		conn:        conn,
		exchangeMap: make(map[string]bool),
		queueMap:    make(map[string]bool),
		bindingMap:  make(map[string]bool),
		cfg:         cfg,
	}

	mq.channelPool = sync.Pool{
		New: func() interface{} {
			ch, errPool := conn.Channel()
			if errPool != nil {
				log.Printf("failed to open RabbitMQ channel: %v", errPool)
				return nil
			}
			return ch
		},
	}

	testCh := mq.getChannel()
	if testCh == nil {
		conn.Close()
		return nil, fmt.Errorf("unable to open a RabbitMQ channel")
	}
	mq.putChannel(testCh)

	log.Printf("connected to RabbitMQ: %s", cfg.URL)
	return mq, nil
}

func (r *RabbitMQ) getChannel() *amqp.Channel {
	ch := r.channelPool.Get()
	if ch == nil {
		newCh, err := r.conn.Channel()
		if err != nil {
			log.Printf("failed to open RabbitMQ channel: %v", err)
			return nil
		}
		return newCh
	}
	return ch.(*amqp.Channel)
}

func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil {
		r.channelPool.Put(ch)
	}
}

// Close closes the connection.
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// EnsureExchange declares an exchange unless already declared.
func (r *RabbitMQ) EnsureExchange(exchangeName, exchangeType string, durable bool) error {
	if exchangeName == "" {
		return fmt.Errorf("exchange name is required")
	}
	if exchangeName == "amq.default" || exchangeName == "default" {
		return fmt.Errorf("cannot declare the default exchange '%s'", exchangeName)
	}

	if _, exists := r.exchangeMap[exchangeName]; exists {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("unable to get a RabbitMQ channel")
	}
	defer r.putChannel(ch)

	err := ch.ExchangeDeclare(
		exchangeName,
		exchangeType,
		durable,
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declaring exchange: %w", err)
	}

	r.exchangeMap[exchangeName] = true
	log.Printf("exchange ready: '%s'", exchangeName)
	return nil
}

// EnsureQueue declares a queue unless already declared. Cached queues are
// verified passively so a stale cache entry does not mask a missing queue.
func (r *RabbitMQ) EnsureQueue(queueName string, durable bool) error {
	if _, exists := r.queueMap[queueName]; exists {
		ch := r.getChannel()
		if ch == nil {
			return fmt.Errorf("unable to get a RabbitMQ channel")
		}
		defer r.putChannel(ch)

		_, err := ch.QueueDeclarePassive(
			queueName,
			durable,
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			delete(r.queueMap, queueName)
			return fmt.Errorf("passive declare of queue '%s' failed: %w", queueName, err)
		}
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("unable to get a RabbitMQ channel")
	}
	defer r.putChannel(ch)

	_, err := ch.QueueDeclare(
		queueName,
		durable,
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declaring queue: %w", err)
	}

	r.queueMap[queueName] = true
	log.Printf("queue ready: %s", queueName)
	return nil
}

// BindQueue binds a queue to an exchange.
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	bindingKey := fmt.Sprintf("%s:%s:%s", exchangeName, queueName, routingKey)
	if _, exists := r.bindingMap[bindingKey]; exists {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("unable to get a RabbitMQ channel")
	}
	defer r.putChannel(ch)

	err := ch.QueueBind(
		queueName,
		routingKey,
		exchangeName,
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("binding queue to exchange: %w", err)
	}

	r.bindingMap[bindingKey] = true
	log.Printf("bound queue %s to exchange %s with routing key %s", queueName, exchangeName, routingKey)
	return nil
}

// PublishMessage publishes a message to an exchange.
func (r *RabbitMQ) PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("unable to get a RabbitMQ channel")
	}
	defer r.putChannel(ch)

	var deliveryMode uint8 = 1
	if persistent {
		deliveryMode = 2
	}

	return ch.PublishWithContext(
		ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: deliveryMode,
			ContentType:  "application/json",
			Body:         message,
			Timestamp:    time.Now(),
		},
	)
}

// PublishJSON publishes JSON-encoded data.
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	return r.PublishMessage(ctx, exchangeName, routingKey, jsonData, persistent)
}

// StartConsumer starts a consumer goroutine for a queue. The handler returns
// true to ack, false to nack-and-requeue. Closing the returned channel stops
// the consumer.
func (r *RabbitMQ) StartConsumer(queueName string, prefetchCount int, handler func([]byte) bool) (<-chan struct{}, error) {
	stopCh := make(chan struct{})

	ch := r.getChannel()
	if ch == nil {
		return nil, fmt.Errorf("unable to get a RabbitMQ channel")
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		r.putChannel(ch)
		return nil, fmt.Errorf("setting QoS: %w", err)
	}

	deliveries, err := ch.Consume(
		queueName,
		"",    // consumer tag, server-generated
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		r.putChannel(ch)
		return nil, fmt.Errorf("registering consumer: %w", err)
	}

	go func() {
		defer r.putChannel(ch)
		defer log.Printf("RabbitMQ consumer stopped: %s", queueName)

		log.Printf("RabbitMQ consumer started, queue: %s, prefetch: %d", queueName, prefetchCount)

		for {
			select {
			case <-stopCh:
				return
			case delivery, ok := <-deliveries:
				if !ok {
					log.Println("RabbitMQ channel closed")
					return
				}

				if handler(delivery.Body) {
					if err := delivery.Ack(false); err != nil {
						log.Printf("failed to ack message: %v", err)
					}
				} else {
					if err := delivery.Nack(false, true); err != nil {
						log.Printf("failed to nack message: %v", err)
					}
				}
			}
		}
	}()

	return stopCh, nil
}
