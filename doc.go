// Package main runs confstore, a multi-tenant key/value configuration store.
// Each configuration value is stored under a normalized key and an owner, served
// through a JSON http api built on fiber and kept in sync across services by
// config.set and config.unset events received from NATS.
package main
