package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	// Shop
	&Customer{},
	&Product{},
	&CartItem{},
	&Address{},
	&Order{},
	&OrderItem{},
	&Review{},
	&DesignRequest{},
}
