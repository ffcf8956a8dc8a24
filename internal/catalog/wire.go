package catalog

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName      = "catalog.v1.CatalogService"
	getProductMethod = "/" + serviceName + "/GetProduct"
)

// productToStruct encodes prices as strings so no precision is lost in transit.
func productToStruct(p *domain.Product) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":             p.ID,
		"name":           p.Name,
		"price":          p.Price.String(),
		"original_price": p.OriginalPrice.String(),
		"sizes":          toAnySlice(p.Sizes),
		"colors":         toAnySlice(p.Colors),
	})
}

func productFromStruct(s *structpb.Struct) (*domain.Product, error) {
	fields := s.GetFields()

	price, err := decimalField(fields["price"])
	if err != nil {
		return nil, fmt.Errorf("decode price: %w", err)
	}
	original, err := decimalField(fields["original_price"])
	if err != nil {
		return nil, fmt.Errorf("decode original_price: %w", err)
	}

	return &domain.Product{
		ID:            fields["id"].GetStringValue(),
		Name:          fields["name"].GetStringValue(),
		Price:         price,
		OriginalPrice: original,
		Sizes:         stringList(fields["sizes"]),
		Colors:        stringList(fields["colors"]),
	}, nil
}

func decimalField(v *structpb.Value) (decimal.Decimal, error) {
	switch kind := v.GetKind().(type) {
	case nil:
		return decimal.Zero, nil
	case *structpb.Value_StringValue:
		if kind.StringValue == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(kind.StringValue)
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(kind.NumberValue), nil
	default:
		return decimal.Zero, fmt.Errorf("unexpected kind %T", kind)
	}
}

func stringList(v *structpb.Value) []string {
	list := v.GetListValue().GetValues()
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, item.GetStringValue())
	}
	return out
}

func toAnySlice(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
