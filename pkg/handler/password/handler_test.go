package password_handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/adammamod416/ToolX/pkg/service/password"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPasswordHandler(password.NewService())
	engine := gin.New()
	engine.POST("/api/password/generate", h.Generate)
	engine.POST("/api/password/generate-bulk", h.GenerateBulk)
	engine.POST("/api/password/check-strength", h.CheckStrength)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("响应不是合法 JSON: %v (%s)", err, w.Body.String())
	}
	return w, payload
}

func TestGenerateEndpoint(t *testing.T) {
	engine := newTestRouter()

	t.Run("空请求体使用默认规格", func(t *testing.T) {
		w, payload := doJSON(t, engine, "/api/password/generate", "")
		if w.Code != http.StatusOK {
			t.Fatalf("状态码 = %d", w.Code)
		}
		if payload["success"] != true {
			t.Fatalf("success = %v", payload["success"])
		}
		data := payload["data"].(map[string]interface{})
		pwd, _ := data["password"].(string)
		if len(pwd) != 16 {
			t.Errorf("默认长度应为 16, 实际 %d", len(pwd))
		}
		strength := data["strength"].(map[string]interface{})
		if strength["level"] != float64(4) {
			t.Errorf("默认规格的强度等级应为 4, 实际 %v", strength["level"])
		}
	})

	t.Run("自定义长度", func(t *testing.T) {
		w, payload := doJSON(t, engine, "/api/password/generate", `{"length":32,"includeSymbols":false}`)
		if w.Code != http.StatusOK {
			t.Fatalf("状态码 = %d", w.Code)
		}
		data := payload["data"].(map[string]interface{})
		if pwd, _ := data["password"].(string); len(pwd) != 32 {
			t.Errorf("长度 = %d, 期望 32", len(pwd))
		}
	})

	t.Run("全部字符类关闭", func(t *testing.T) {
		body := `{"includeUppercase":false,"includeLowercase":false,"includeNumbers":false,"includeSymbols":false}`
		w, payload := doJSON(t, engine, "/api/password/generate", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("状态码 = %d, 期望 400", w.Code)
		}
		if payload["success"] != false {
			t.Errorf("success = %v", payload["success"])
		}
	})

	t.Run("请求体不是JSON", func(t *testing.T) {
		w, _ := doJSON(t, engine, "/api/password/generate", "not json")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("状态码 = %d, 期望 400", w.Code)
		}
	})
}

func TestGenerateBulkEndpoint(t *testing.T) {
	engine := newTestRouter()

	t.Run("默认生成五个", func(t *testing.T) {
		w, payload := doJSON(t, engine, "/api/password/generate-bulk", "{}")
		if w.Code != http.StatusOK {
			t.Fatalf("状态码 = %d", w.Code)
		}
		data := payload["data"].(map[string]interface{})
		if data["count"] != float64(5) {
			t.Errorf("count = %v, 期望 5", data["count"])
		}
		if passwords := data["passwords"].([]interface{}); len(passwords) != 5 {
			t.Errorf("passwords 长度 = %d", len(passwords))
		}
	})

	t.Run("数量超限", func(t *testing.T) {
		w, _ := doJSON(t, engine, "/api/password/generate-bulk", `{"count":101}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("状态码 = %d, 期望 400", w.Code)
		}
	})
}

func TestCheckStrengthEndpoint(t *testing.T) {
	engine := newTestRouter()

	t.Run("正常检测", func(t *testing.T) {
		w, payload := doJSON(t, engine, "/api/password/check-strength", `{"password":"Abcdefgh1234!@#$"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("状态码 = %d", w.Code)
		}
		data := payload["data"].(map[string]interface{})
		if data["score"] != float64(7) {
			t.Errorf("score = %v, 期望 7", data["score"])
		}
		if data["text"] != "非常强" {
			t.Errorf("text = %v", data["text"])
		}
	})

	t.Run("缺少密码字段", func(t *testing.T) {
		w, _ := doJSON(t, engine, "/api/password/check-strength", "{}")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("状态码 = %d, 期望 400", w.Code)
		}
	})
}
