package model

// TenantID accessors so the tenancy layer can stamp and re-validate ownership
// without knowing concrete row types.

func (o *Outlet) GetTenantID() uint      { return o.TenantID }
func (o *Outlet) SetTenantID(id uint)    { o.TenantID = id }
func (p *Product) GetTenantID() uint     { return p.TenantID }
func (p *Product) SetTenantID(id uint)   { p.TenantID = id }
func (o *Order) GetTenantID() uint       { return o.TenantID }
func (o *Order) SetTenantID(id uint)     { o.TenantID = id }
func (p *Promotion) GetTenantID() uint   { return p.TenantID }
func (p *Promotion) SetTenantID(id uint) { p.TenantID = id }
