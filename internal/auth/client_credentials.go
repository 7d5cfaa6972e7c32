package auth

import (
	"github.com/gin-gonic/gin"
)

// HandleToken issues an access token to a registered machine client
// @Summary Token Endpoint
// @Description Obtain an access token using the client credentials grant. The token acts on behalf of the user owning the client.
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param scope formData string false "Requested scope"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		log.WithError(err).WithField("client_id", c.PostForm("client_id")).Warn("Token request failed")
	}
}
