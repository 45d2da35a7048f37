package eventmodels

import "fmt"

type AssetClass string

const (
	AssetClassStock        AssetClass = "stock"
	AssetClassFuture       AssetClass = "future"
	AssetClassOption       AssetClass = "option"
	AssetClassFutureOption AssetClass = "future_option"
)

func (a AssetClass) Validate() error {
	if a != AssetClassStock && a != AssetClassFuture && a != AssetClassOption && a != AssetClassFutureOption {
		return fmt.Errorf("AssetClass: Validate: invalid asset class: %s", a)
	}

	return nil
}

func (a AssetClass) IsDerivative() bool {
	return a == AssetClassOption || a == AssetClassFutureOption
}

func (a AssetClass) IsUnderlying() bool {
	return a == AssetClassStock || a == AssetClassFuture
}
