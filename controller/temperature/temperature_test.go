package temperature

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/page"
	"github.com/kirsrus/labsite/service/api"

	"github.com/PuerkitoBio/goquery"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `<html><body>
<form data-temp-form>
  <input id="room" name="room">
  <input id="temperature" name="temperature" value="20">
  <button type="submit">Отправить</button>
</form>
</body></html>`

type fakeApi struct {
	res     *model.Response
	err     error
	reports []model.TemperatureReport
	during  func()
}

func (f *fakeApi) Images(context.Context) (*model.Response, error) {
	return nil, errors.New("не используется")
}

func (f *fakeApi) SendTemperature(_ context.Context, report model.TemperatureReport) (*model.Response, error) {
	f.reports = append(f.reports, report)
	if f.during != nil {
		f.during()
	}
	return f.res, f.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	toasts []model.Toast
}

func (f *fakeNotifier) Show(toast model.Toast) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toasts = append(f.toasts, toast)
	return "id"
}

func (f *fakeNotifier) Dismiss(string) {}

func newTestForm(t *testing.T, a *fakeApi, room, temperature string) (*Temperature, *page.Page, *fakeNotifier) {
	t.Helper()
	p, err := page.ParseString(fixture)
	require.NoError(t, err)
	p.Do(func(tx *page.Tx) {
		tx.SetValue(tx.Find("#room"), room)
		tx.SetValue(tx.Find("#temperature"), temperature)
	})
	notifier := &fakeNotifier{}
	form, err := NewTemperature(p, a, notifier, &ConfigTemperature{})
	require.NoError(t, err)
	return form, p, notifier
}

func assertEnabled(t *testing.T, p *page.Page) {
	t.Helper()
	p.Do(func(tx *page.Tx) {
		tx.Find("[data-temp-form] input, [data-temp-form] button").Each(func(_ int, s *goquery.Selection) {
			assert.False(t, page.IsDisabled(s))
		})
	})
}

func TestNewTemperature(t *testing.T) {
	p, err := page.ParseString(fixture)
	require.NoError(t, err)
	_, err = NewTemperature(p, &fakeApi{}, &fakeNotifier{}, nil)
	assert.Error(t, err)
	_, err = NewTemperature(p, nil, &fakeNotifier{}, &ConfigTemperature{})
	assert.Error(t, err)
}

func TestTemperatureValidation(t *testing.T) {
	tests := []struct {
		name        string
		room        string
		temperature string
		message     string
		focus       string
	}{
		{name: "пустая аудитория", room: "", temperature: "22.5", message: "Введите номер аудитории.", focus: "#room"},
		{name: "аудитория из пробелов", room: "   ", temperature: "22.5", message: "Введите номер аудитории.", focus: "#room"},
		{name: "температура не число", room: "101", temperature: "тепло", message: "Введите температуру числом.", focus: "#temperature"},
		{name: "пустая температура", room: "101", temperature: "", message: "Введите температуру числом.", focus: "#temperature"},
		{name: "бесконечность", room: "101", temperature: "Infinity", message: "Введите температуру числом.", focus: "#temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeApi{}
			form, p, notifier := newTestForm(t, a, tt.room, tt.temperature)

			err := form.Submit(context.Background())
			require.Error(t, err)
			assert.True(t, errors.IsNotValid(err))
			assert.Empty(t, a.reports)

			require.Len(t, notifier.toasts, 1)
			assert.Equal(t, model.ToastError, notifier.toasts[0].Kind)
			assert.Equal(t, "Проверьте форму", notifier.toasts[0].Title)
			assert.Equal(t, tt.message, notifier.toasts[0].Message)

			p.Do(func(tx *page.Tx) {
				assert.True(t, tx.IsActive(tx.Find(tt.focus)))
			})
			assertEnabled(t, p)
		})
	}
}

func TestTemperatureSubmit(t *testing.T) {
	a := &fakeApi{res: &model.Response{Status: 200, JSON: json.RawMessage(`{"message":"Принято: аудитория 101, температура 22.5"}`)}}
	form, p, notifier := newTestForm(t, a, " 101 ", "22.5")

	a.during = func() {
		p.Do(func(tx *page.Tx) {
			assert.True(t, page.IsDisabled(tx.Find("#room")))
			assert.True(t, page.IsDisabled(tx.Find("#temperature")))
			assert.True(t, page.IsDisabled(tx.Find("button")))
		})
	}

	require.NoError(t, form.Submit(context.Background()))

	require.Len(t, a.reports, 1)
	body, err := json.Marshal(a.reports[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"room":"101","temperature":22.5}`, string(body))

	require.Len(t, notifier.toasts, 1)
	assert.Equal(t, model.ToastSuccess, notifier.toasts[0].Kind)
	assert.Equal(t, "Готово", notifier.toasts[0].Title)
	assert.Equal(t, "Принято: аудитория 101, температура 22.5", notifier.toasts[0].Message)

	assertEnabled(t, p)
	// Форма сброшена к исходным значениям
	p.Do(func(tx *page.Tx) {
		assert.Equal(t, "", tx.Value(tx.Find("#room")))
		assert.Equal(t, "20", tx.Value(tx.Find("#temperature")))
	})
}

func TestTemperatureSuccessText(t *testing.T) {
	tests := []struct {
		name    string
		res     *model.Response
		message string
	}{
		{name: "поле result", res: &model.Response{JSON: json.RawMessage(`{"result":"ok"}`)}, message: "ok"},
		{name: "пустой объект", res: &model.Response{JSON: json.RawMessage(`{}`)}, message: "Данные успешно отправлены."},
		{name: "текст", res: &model.Response{Text: "принято"}, message: "Данные успешно отправлены."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, _, notifier := newTestForm(t, &fakeApi{res: tt.res}, "101", "20")
			require.NoError(t, form.Submit(context.Background()))
			require.Len(t, notifier.toasts, 1)
			assert.Equal(t, tt.message, notifier.toasts[0].Message)
		})
	}
}

func TestTemperatureSendFailed(t *testing.T) {
	a := &fakeApi{err: &api.Error{Status: 400, Message: "Неверные данные"}}
	form, p, notifier := newTestForm(t, a, "101", "22.5")

	assert.Error(t, form.Submit(context.Background()))
	require.Len(t, notifier.toasts, 1)
	assert.Equal(t, model.ToastError, notifier.toasts[0].Kind)
	assert.Equal(t, "Ошибка отправки", notifier.toasts[0].Title)
	assert.Equal(t, "Неверные данные", notifier.toasts[0].Message)

	assertEnabled(t, p)
	// При ошибке значения остаются
	p.Do(func(tx *page.Tx) {
		assert.Equal(t, "101", tx.Value(tx.Find("#room")))
	})
}

func TestTemperatureWithoutForm(t *testing.T) {
	p, err := page.ParseString(`<html><body></body></html>`)
	require.NoError(t, err)
	a := &fakeApi{}
	notifier := &fakeNotifier{}
	form, err := NewTemperature(p, a, notifier, &ConfigTemperature{})
	require.NoError(t, err)
	assert.NoError(t, form.Submit(context.Background()))
	assert.Empty(t, a.reports)
	assert.Empty(t, notifier.toasts)
}
