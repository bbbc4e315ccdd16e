package repository

import "github.com/verone/commerce-core/internal/domain/entity"

// PurchaseOrderRepository es el puerto de SOLO LECTURA hacia las órdenes de
// compra (el editor de compras vive en otro módulo del back-office). Las
// alertas lo usan para marcar faltantes ya cubiertos por una compra abierta.
type PurchaseOrderRepository interface {
	// OpenCoverageByProduct devuelve, por producto, la cobertura pendiente
	// de recibir más antigua (draft o confirmed, no recibida ni cancelada).
	OpenCoverageByProduct(companyID string, productIDs []string) (map[string]entity.PurchaseOrderCoverage, error)
}
