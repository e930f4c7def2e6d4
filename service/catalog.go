package service

import (
	"context"
	"strings"

	"storepos/models"

	"go.uber.org/zap"
)

// ListProducts proxies the store's catalog for the till.
func (s *POSService) ListProducts(ctx context.Context, cashierID string) ([]models.Product, error) {
	products, err := s.front.ListProducts(ctx)
	if err != nil {
		return nil, s.upstream(cashierID, err)
	}
	return products, nil
}

// RecentSales lists the cashier's journaled sales, newest first.
func (s *POSService) RecentSales(ctx context.Context, cashierID string, limit int) ([]models.SaleRecord, error) {
	return s.sales.Recent(ctx, cashierID, limit)
}

// ProcessSaleReturn puts units of an already invoiced sale back into stock.
func (s *POSService) ProcessSaleReturn(ctx context.Context, cashierID string, req models.ReturnRequest) (string, error) {
	req.InvoiceNo = strings.TrimSpace(req.InvoiceNo)
	req.Reason = strings.TrimSpace(req.Reason)
	req.SaleItem.SizeLabel = sizeLabelOrDefault(req.SaleItem.SizeLabel)
	if req.InvoiceNo == "" || req.SaleItem.ProductID <= 0 || req.SaleItem.Quantity <= 0 {
		return "", ErrInvalidReturn
	}

	msg, err := s.front.ProcessReturn(ctx, req)
	if err != nil {
		return "", s.upstream(cashierID, err)
	}
	s.logger.Info("return processed",
		zap.String("cashier_id", cashierID),
		zap.String("invoice_no", req.InvoiceNo),
		zap.Int64("product_id", req.SaleItem.ProductID),
		zap.String("size_label", req.SaleItem.SizeLabel),
		zap.Int("quantity", req.SaleItem.Quantity))
	return msg, nil
}
