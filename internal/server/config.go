package server

import (
	"time"
)

type Config struct {
	Port            int           `yaml:"port"`
	AntidosBuckets  int           `yaml:"antidosBuckets"`
	AntidosPeriod   time.Duration `yaml:"antidosPeriod"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
	MaxK            int           `yaml:"maxK"`
	MaxPoints       int           `yaml:"maxPoints"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}
