package types

// Flash is a one-shot notification carried across a redirect.
type Flash struct {
	Notice string
	Error  string
}

type FlashSetter interface {
	SetFlash(flash Flash)
}

type BasePageData struct {
	Title string
	Flash Flash
}

func (d *BasePageData) SetFlash(flash Flash) {
	if flash.Notice != "" {
		d.Flash.Notice = flash.Notice
	}
	if flash.Error != "" {
		d.Flash.Error = flash.Error
	}
}

type NavItem struct {
	Label  string
	Href   string
	Active bool
}

type PaymentPageData struct {
	BasePageData
	Plan  string
	Price string
}
