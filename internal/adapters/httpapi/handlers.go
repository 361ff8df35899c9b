package httpapi

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// minEmailLength is the shortest email text accepted for classification,
// in characters.
const minEmailLength = 10

// predictRequest is the body of POST /predict
type predictRequest struct {
	EmailText string `json:"email_text"`
}

// predictResponse is the success body of POST /predict
type predictResponse struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

func (s *Server) handlePredict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	emailText := strings.TrimSpace(req.EmailText)
	if emailText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email text is required"})
		return
	}
	if utf8.RuneCountInString(emailText) < minEmailLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Email text is too short. Please provide at least 10 characters.",
		})
		return
	}

	result, err := s.service.Predict(c.Request.Context(), emailText)
	if err != nil {
		s.logger.Error("Prediction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "An error occurred while processing your request. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, predictResponse{
		Prediction: string(result.Label),
		Confidence: result.Confidence,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	loaded, modelType := s.service.ModelInfo(c.Request.Context())

	var mt any
	if loaded {
		mt = modelType
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": loaded,
		"model_type":   mt,
	})
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Email Scam Classifier</title></head>
<body>
<h1>Email Scam Classifier</h1>
<form id="f">
<textarea name="email_text" rows="12" cols="80" placeholder="Paste email text here"></textarea><br>
<button type="submit">Classify</button>
</form>
<pre id="out"></pre>
<script>
document.getElementById("f").addEventListener("submit", async function(e) {
  e.preventDefault();
  const text = this.email_text.value;
  const resp = await fetch("/predict", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({email_text: text})
  });
  document.getElementById("out").textContent = JSON.stringify(await resp.json(), null, 2);
});
</script>
</body>
</html>
`
