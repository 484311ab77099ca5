package email

// Email templates using HTML

const alertTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #b45309, #92400e); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #ffffff; padding: 30px; border: 1px solid #e5e7eb; border-top: none; }
        .footer { background: #f9fafb; padding: 20px; text-align: center; font-size: 12px; color: #6b7280; border: 1px solid #e5e7eb; border-top: none; border-radius: 0 0 10px 10px; }
        .warning { background: #fef3c7; border: 1px solid #f59e0b; padding: 15px; border-radius: 8px; margin: 20px 0; }
        .critical { background: #fee2e2; border: 1px solid #dc2626; padding: 15px; border-radius: 8px; margin: 20px 0; }
        .info-box { background: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .info-row { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #e5e7eb; }
        .info-row:last-child { border-bottom: none; }
        .info-label { color: #6b7280; }
        .info-value { font-weight: 600; }
        .button { display: inline-block; background: #b45309; color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px; margin: 20px 0; }
    </style>
</head>
<body>
    <div class="header">
        <h1>SIGEC Posto</h1>
        <p style="margin: 5px 0 0 0; opacity: 0.9;">Station back office</p>
    </div>
    <div class="content">
        <h2>{{.Title}}</h2>

        <div class="{{if .Critical}}critical{{else}}warning{{end}}">
            {{.Message}}
        </div>

        <div class="info-box">
            <div class="info-row">
                <span class="info-label">Priority</span>
                <span class="info-value">{{.Priority}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Type</span>
                <span class="info-value">{{.Type}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Station</span>
                <span class="info-value">{{.StationID}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Triggered at</span>
                <span class="info-value">{{.TriggeredAt}}</span>
            </div>
        </div>

        {{if .BaseURL}}
        <p style="text-align: center;">
            <a href="{{.BaseURL}}/alerts/{{.AlertID}}" class="button">Open alert</a>
        </p>
        {{end}}
    </div>
    <div class="footer">
        <p>This is an automated message. Please do not reply to this email.</p>
    </div>
</body>
</html>
`
