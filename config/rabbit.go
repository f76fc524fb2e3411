package config

import (
	"blogapp/global"

	amqp "github.com/rabbitmq/amqp091-go"
)

func initRabbit() {
	url := AppConfig.RabbitMQ.Url
	if url == "" {
		global.Logger.Warn("rabbitmq url empty, skipping rabbit init")
		return
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		global.Logger.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		global.Logger.Fatalf("Failed to open RabbitMQ channel: %v", err)
	}

	qname := QueueName()
	_, err = ch.QueueDeclare(qname, true, false, false, false, nil)
	if err != nil {
		global.Logger.Fatalf("Failed to declare RabbitMQ queue: %v", err)
	}

	global.RabbitConn = conn
	global.RabbitChannel = ch
	global.Logger.WithField("queue", qname).Info("rabbitmq initialized")
}

// QueueName is the queue interaction events are published to.
func QueueName() string {
	if AppConfig == nil || AppConfig.RabbitMQ.Queue == "" {
		return "like.queue"
	}
	return AppConfig.RabbitMQ.Queue
}

// Close releases the broker and database connections opened by InitConfig.
func Close() {
	if global.RabbitChannel != nil {
		_ = global.RabbitChannel.Close()
	}
	if global.RabbitConn != nil {
		_ = global.RabbitConn.Close()
	}
	if global.RedisDB != nil {
		_ = global.RedisDB.Close()
	}
	if global.Db != nil {
		if sqlDB, err := global.Db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
