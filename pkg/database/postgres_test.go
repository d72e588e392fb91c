package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dimmuramos04/sistema-seguimiento-estudiantes/pkg/config"
)

func TestDSNDefaultsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "seguimiento"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=seguimiento sslmode=disable TimeZone=UTC", dsn)
}
