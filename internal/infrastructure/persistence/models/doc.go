// Package models contains GORM persistence models for the catalog and stock
// tables order entry reads. Domain types carry no GORM tags; each model maps
// to its domain type through ToDomain.
package models
