package widget

import (
	"fmt"

	"github.com/kirsrus/labsite/pkg/messages"
	"github.com/kirsrus/labsite/pkg/page"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	walletFormSelector    = ".wallet-form"
	walletStatusSelector  = "[data-form-status]"
	walletCheckedSelector = `input[name="wallet"][checked]`
)

// Wallet демонстрационная форма выбора кошелька. Инициализируется через NewWallet
type Wallet struct {
	log      *logrus.Entry
	page     *page.Page
	messages *messages.Table
}

// NewWallet конструктор Wallet
func NewWallet(p *page.Page, config *ConfigWidget) (*Wallet, error) {
	log, err := prepare(p, config, "wallet")
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Wallet{log: log, page: p, messages: config.Messages}, nil
}

// Select отмечает кошелёк value
func (m *Wallet) Select(value string) error {
	found := false
	m.page.Do(func(tx *page.Tx) {
		input := tx.Find(walletFormSelector).Find(fmt.Sprintf(`input[name="wallet"][value="%s"]`, value))
		if input.Length() == 0 {
			return
		}
		found = true
		page.Check(input.First())
	})
	if !found {
		return errors.NotFoundf("кошелёк %s", value)
	}
	return nil
}

// Submit выводит в [data-form-status] выбранный кошелёк или просьбу выбрать
func (m *Wallet) Submit() string {
	status := ""
	m.page.Do(func(tx *page.Tx) {
		form := tx.Find(walletFormSelector).First()
		if form.Length() == 0 {
			return
		}
		selected, _ := form.Find(walletCheckedSelector).First().Attr("value")
		if selected != "" {
			status = fmt.Sprintf(m.messages.WalletSelected, selected)
		} else {
			status = m.messages.WalletMissing
		}
		tx.Find(walletStatusSelector).SetText(status)
	})
	return status
}
