package global

import (
	"blogapp/utils"

	"github.com/go-redis/redis"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	Db            *gorm.DB
	RedisDB       *redis.Client
	RabbitConn    *amqp.Connection
	RabbitChannel *amqp.Channel
	Logger        = logrus.New()
	Tokens        *utils.TokenService
)
