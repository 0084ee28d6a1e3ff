package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/denverparsonswork-debug/dockside-helper/internal/utils"
)

// AlertService — уведомления в ops-чат Telegram. Работает через Bot API
// напрямую (plain HTTP). Все ошибки только логируем: алерты не должны
// влиять на основной поток.
type AlertService struct {
	token   string
	chatID  int64
	baseURL string
	dryRun  bool
	client  *http.Client
}

func NewAlertService(botToken string, opsChatID int64, dryRun bool) *AlertService {
	return &AlertService{
		token:   botToken,
		chatID:  opsChatID,
		baseURL: fmt.Sprintf("https://api.telegram.org/bot%s", botToken),
		dryRun:  dryRun,
		client:  &http.Client{},
	}
}

type tgResp struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *AlertService) sendMessage(text string) error {
	if t == nil || t.token == "" || t.chatID == 0 {
		utils.Logger.Debugf("[tg][skip] token or chatID empty")
		return nil
	}
	if t.dryRun {
		utils.Logger.Infof("[tg][dry-run] text=%q", text)
		return nil
	}
	body := map[string]any{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", t.baseURL+"/sendMessage", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var api tgResp
	_ = json.Unmarshal(respBody, &api)
	if resp.StatusCode != 200 || !api.Ok {
		return fmt.Errorf("telegram sendMessage failed: status=%d ok=%v desc=%s", resp.StatusCode, api.Ok, api.Description)
	}
	return nil
}

func (t *AlertService) NotifyRateLimited(identifier string, attempts int) {
	text := fmt.Sprintf("⚠️ Слишком много неудачных кодов: <b>%s</b> (%d попыток)", identifier, attempts)
	if err := t.sendMessage(text); err != nil {
		utils.Logger.Warnf("[tg][alert] rate-limit notify failed: %v", err)
	}
}

func (t *AlertService) NotifyDriverCreated(fullName, email string) {
	text := fmt.Sprintf("🚚 Новый аккаунт водителя: <b>%s</b> (%s)", fullName, email)
	if err := t.sendMessage(text); err != nil {
		utils.Logger.Warnf("[tg][alert] driver-created notify failed: %v", err)
	}
}
