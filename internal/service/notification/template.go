package notification

import (
	"strings"
)

// DefaultPaymentLinkBase 默认支付链接前缀
const DefaultPaymentLinkBase = "https://pay.innflow.com/"

// TemplateVars 模板变量
type TemplateVars struct {
	Guest    string
	Ref      string
	Property string
	Date     string
	Link     string
}

// RenderTemplate 按 guest、ref、property、date、link 顺序替换各占位符的首次出现
func RenderTemplate(template string, vars TemplateVars) string {
	out := template
	for _, p := range []struct{ key, value string }{
		{"{{guest}}", vars.Guest},
		{"{{ref}}", vars.Ref},
		{"{{property}}", vars.Property},
		{"{{date}}", vars.Date},
		{"{{link}}", vars.Link},
	} {
		out = strings.Replace(out, p.key, p.value, 1)
	}
	return out
}

// PaymentLink 预订支付链接
func PaymentLink(base, ref string) string {
	if base == "" {
		base = DefaultPaymentLinkBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + ref
}
