// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// Regenerate with `go generate ./test/mocks`.
package mocks

//go:generate mockgen -source=../../internal/core/ports/order_repository.go -destination=order_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/inventory_repository.go -destination=inventory_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/product_repository.go -destination=product_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/unit_of_work.go -destination=unit_of_work_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/events.go -destination=event_publisher_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/order_service.go -destination=order_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/inventory_service.go -destination=inventory_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/database.go -destination=database_mock.go -package=mocks
//go:generate mockgen -source=../../internal/workers/tasks.go -destination=enqueuer_mock.go -package=mocks Enqueuer
//go:generate mockgen -source=../../internal/workers/notification_processor.go -destination=mailer_mock.go -package=mocks Mailer
