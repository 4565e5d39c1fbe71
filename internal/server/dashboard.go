package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>FraudSight</title>
    <meta name="description" content="Real-time transaction fraud detection">
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&family=JetBrains+Mono:wght@400;500&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --bg: #09090b;
            --bg-subtle: #18181b;
            --border: #27272a;
            --text: #fafafa;
            --text-secondary: #a1a1aa;
            --text-tertiary: #52525b;
            --accent: #3b82f6;
            --accent-dim: rgba(59, 130, 246, 0.1);
            --red: #ef4444;
            --amber: #f59e0b;
            --green: #22c55e;
        }

        body {
            font-family: 'Inter', -apple-system, sans-serif;
            background: var(--bg); color: var(--text);
            min-height: 100vh; font-size: 14px;
            -webkit-font-smoothing: antialiased;
        }
        .mono { font-family: 'JetBrains Mono', monospace; }
        .container { max-width: 1000px; margin: 0 auto; padding: 0 24px; }

        header {
            border-bottom: 1px solid var(--border); padding: 16px 0;
            position: sticky; top: 0; background: var(--bg); z-index: 100;
        }
        .header-inner { display: flex; justify-content: space-between; align-items: center; }
        .logo { display: flex; align-items: center; gap: 10px; text-decoration: none; color: var(--text); }
        .logo-mark { width: 24px; height: 24px; background: var(--accent); border-radius: 6px; }
        .logo-text { font-weight: 600; font-size: 15px; }
        nav { display: flex; gap: 32px; align-items: center; }
        nav a { color: var(--text-secondary); text-decoration: none; font-size: 13px; transition: color 0.15s; }
        nav a:hover, nav a.active { color: var(--text); }
        #whoami { color: var(--text-tertiary); font-size: 12px; }

        .grid { display: grid; grid-template-columns: 1fr 1fr; gap: 24px; padding: 32px 0; }
        @media (max-width: 760px) { .grid { grid-template-columns: 1fr; } }

        .panel {
            background: var(--bg-subtle); border: 1px solid var(--border);
            border-radius: 12px; padding: 24px;
        }
        .panel h2 { font-size: 15px; font-weight: 600; margin-bottom: 16px; }

        .field { margin-bottom: 12px; }
        .field label { display: block; font-size: 12px; color: var(--text-secondary); margin-bottom: 4px; }
        .field input, .field select {
            width: 100%; background: var(--bg); border: 1px solid var(--border);
            border-radius: 6px; padding: 8px 10px; color: var(--text); font-size: 13px;
        }
        .field input:focus { outline: none; border-color: var(--accent); }
        .row2 { display: grid; grid-template-columns: 1fr 1fr; gap: 12px; }

        button {
            background: var(--accent); color: #fff; border: none; border-radius: 8px;
            padding: 10px 18px; font-size: 13px; font-weight: 500; cursor: pointer;
        }
        button:hover { opacity: 0.9; }
        button.ghost { background: transparent; border: 1px solid var(--border); color: var(--text-secondary); }

        .result {
            margin-top: 16px; padding: 16px; border-radius: 8px; display: none;
            border: 1px solid var(--border);
        }
        .result.fraud { border-color: var(--red); background: rgba(239, 68, 68, 0.08); }
        .result.legit { border-color: var(--green); background: rgba(34, 197, 94, 0.08); }
        .result .headline { font-weight: 600; margin-bottom: 6px; }
        .result .detail { color: var(--text-secondary); font-size: 13px; }

        .tier { padding: 2px 8px; border-radius: 4px; font-size: 11px; text-transform: uppercase; }
        .tier.High { background: rgba(239, 68, 68, 0.15); color: var(--red); }
        .tier.Moderate { background: rgba(245, 158, 11, 0.15); color: var(--amber); }
        .tier.Low { background: rgba(34, 197, 94, 0.15); color: var(--green); }

        .stats { display: grid; grid-template-columns: repeat(4, 1fr); gap: 12px; margin-bottom: 20px; }
        .stat { background: var(--bg); border: 1px solid var(--border); border-radius: 8px; padding: 14px; }
        .stat .value { font-size: 20px; font-weight: 600; }
        .stat .label { font-size: 11px; color: var(--text-tertiary); text-transform: uppercase; margin-top: 4px; }

        table { width: 100%; border-collapse: collapse; font-size: 13px; }
        th { text-align: left; color: var(--text-tertiary); font-weight: 500; font-size: 11px;
             text-transform: uppercase; padding: 8px 6px; border-bottom: 1px solid var(--border); }
        td { padding: 10px 6px; border-bottom: 1px solid var(--border); color: var(--text-secondary); }
        td:first-child { color: var(--text); }

        .error { color: var(--red); font-size: 13px; margin-top: 10px; display: none; }
        .auth-toggle { margin-top: 12px; font-size: 12px; color: var(--text-tertiary); }
        .auth-toggle a { color: var(--accent); cursor: pointer; }

        footer { border-top: 1px solid var(--border); padding: 24px 0; margin-top: 48px;
                 text-align: center; color: var(--text-tertiary); font-size: 13px; }
        footer a { color: var(--text-secondary); text-decoration: none; margin: 0 12px; }
    </style>
</head>
<body>
    <header><div class="container header-inner">
        <a href="/" class="logo"><div class="logo-mark"></div><span class="logo-text">FraudSight</span></a>
        <nav>
            <a href="/" class="active">Dashboard</a>
            <a href="/feed">Live Feed</a>
            <span id="whoami"></span>
            <button class="ghost" id="logout" style="display:none">Sign out</button>
        </nav>
    </div></header>

    <main class="container">
        <div class="grid">
            <div class="panel" id="auth-panel">
                <h2 id="auth-title">Sign in</h2>
                <div class="field"><label>Username</label><input id="username" autocomplete="username"></div>
                <div class="field" id="email-field" style="display:none"><label>Email (optional)</label><input id="email" type="email"></div>
                <div class="field"><label>Password</label><input id="password" type="password" autocomplete="current-password"></div>
                <button id="auth-submit">Sign in</button>
                <div class="error" id="auth-error"></div>
                <div class="auth-toggle">No account? <a id="auth-switch">Create one</a></div>
            </div>

            <div class="panel" id="predict-panel" style="display:none">
                <h2>Score a transaction</h2>
                <div class="row2">
                    <div class="field"><label>Gender</label>
                        <select id="Gender"><option>M</option><option>F</option></select></div>
                    <div class="field"><label>Age</label><input id="Age" type="number" value="34"></div>
                </div>
                <div class="row2">
                    <div class="field"><label>Home Country</label><input id="HomeCountry" value="France"></div>
                    <div class="field"><label>Transaction Country</label><input id="TransactionCountry" value="France"></div>
                </div>
                <div class="row2">
                    <div class="field"><label>Amount</label><input id="TransactionAmount" type="number" step="0.01" value="120.50"></div>
                    <div class="field"><label>Currency</label><input id="TransactionCurrencyCode" value="EUR"></div>
                </div>
                <div class="row2">
                    <div class="field"><label>Account No</label><input id="AccountNo" value="100234567"></div>
                    <div class="field"><label>CIF</label><input id="CIF" value="55001"></div>
                </div>
                <div class="row2">
                    <div class="field"><label>Card Expiry (YYMM)</label><input id="CardExpiryDate" value="2712"></div>
                    <div class="field"><label>Product ID</label><input id="ProductID" type="number" value="3"></div>
                </div>
                <div class="row2">
                    <div class="field"><label>House Type ID</label><input id="HouseTypeID" type="number" value="2"></div>
                    <div class="field"><label>Contact Availability ID</label><input id="ContactAvaliabilityID" type="number" value="1"></div>
                </div>
                <div class="field"><label>Large Purchase (0/1)</label><input id="LargePurchase" type="number" value="0"></div>
                <button id="predict-submit">Score</button>
                <div class="error" id="predict-error"></div>
                <div class="result" id="result">
                    <div class="headline" id="result-status"></div>
                    <div class="detail">
                        Probability <span class="mono" id="result-prob"></span> ·
                        <span class="tier" id="result-tier"></span> ·
                        confidence <span id="result-conf"></span>
                    </div>
                </div>
            </div>
        </div>

        <div class="panel" id="history-panel" style="display:none">
            <h2>Your activity</h2>
            <div class="stats">
                <div class="stat"><div class="value" id="stat-total">–</div><div class="label">Scored</div></div>
                <div class="stat"><div class="value" id="stat-fraud">–</div><div class="label">Flagged</div></div>
                <div class="stat"><div class="value" id="stat-rate">–</div><div class="label">Fraud rate</div></div>
                <div class="stat"><div class="value" id="stat-avg">–</div><div class="label">Avg probability</div></div>
            </div>
            <table>
                <thead><tr><th>Country</th><th>Amount</th><th>Risk</th><th>Probability</th><th>When</th></tr></thead>
                <tbody id="history"></tbody>
            </table>
        </div>
    </main>

    <footer><div class="container">
        <a href="/api/health">API health</a><a href="/metrics">Metrics</a><a href="/feed">Live feed</a>
    </div></footer>

    <script>
        let registering = false;

        const show = (id, on) => document.getElementById(id).style.display = on ? '' : 'none';
        const setText = (id, v) => document.getElementById(id).textContent = v;
        const fail = (id, msg) => { const el = document.getElementById(id); el.textContent = msg; el.style.display = 'block'; };
        const clearFail = id => document.getElementById(id).style.display = 'none';

        async function api(path, opts) {
            const res = await fetch(path, Object.assign({
                headers: {'Content-Type': 'application/json'},
                credentials: 'same-origin'
            }, opts));
            const body = await res.json().catch(() => ({}));
            if (!res.ok) throw new Error(body.error || ('HTTP ' + res.status));
            return body;
        }

        function setAuthMode() {
            setText('auth-title', registering ? 'Create account' : 'Sign in');
            document.getElementById('auth-submit').textContent = registering ? 'Register' : 'Sign in';
            show('email-field', registering);
            document.getElementById('auth-switch').textContent = registering ? 'Sign in instead' : 'Create one';
        }
        document.getElementById('auth-switch').onclick = () => { registering = !registering; setAuthMode(); };

        document.getElementById('auth-submit').onclick = async () => {
            clearFail('auth-error');
            const body = {
                username: document.getElementById('username').value,
                password: document.getElementById('password').value
            };
            if (registering) body.email = document.getElementById('email').value;
            try {
                const resp = await api(registering ? '/api/register' : '/api/login', {method: 'POST', body: JSON.stringify(body)});
                onSignedIn(resp.user);
            } catch (e) { fail('auth-error', e.message); }
        };

        document.getElementById('logout').onclick = async () => {
            try { await api('/api/logout', {method: 'POST'}); } catch (e) {}
            location.reload();
        };

        function onSignedIn(user) {
            show('auth-panel', false);
            show('predict-panel', true);
            show('history-panel', true);
            show('logout', true);
            setText('whoami', user.username);
            refresh();
        }

        const numeric = ['Age', 'HouseTypeID', 'ContactAvaliabilityID', 'TransactionAmount', 'LargePurchase', 'ProductID'];
        const fields = ['Gender', 'Age', 'HouseTypeID', 'ContactAvaliabilityID', 'HomeCountry', 'AccountNo',
                        'CardExpiryDate', 'TransactionAmount', 'TransactionCountry', 'LargePurchase',
                        'ProductID', 'CIF', 'TransactionCurrencyCode'];

        document.getElementById('predict-submit').onclick = async () => {
            clearFail('predict-error');
            const body = {};
            for (const f of fields) {
                const raw = document.getElementById(f).value;
                body[f] = numeric.includes(f) ? parseFloat(raw) : raw;
            }
            try {
                const r = await api('/api/predict', {method: 'POST', body: JSON.stringify(body)});
                const el = document.getElementById('result');
                el.style.display = 'block';
                el.className = 'result ' + (r.fraud_prediction === 1 ? 'fraud' : 'legit');
                setText('result-status', r.status);
                setText('result-prob', (r.fraud_probability * 100).toFixed(1) + '%');
                const tier = document.getElementById('result-tier');
                tier.textContent = r.risk_level;
                tier.className = 'tier ' + r.risk_level;
                setText('result-conf', r.confidence);
                refresh();
            } catch (e) { fail('predict-error', e.message); }
        };

        const timeAgo = ts => {
            const diff = Math.floor((Date.now() - new Date(ts).getTime()) / 1000);
            if (diff < 60) return diff + 's ago';
            if (diff < 3600) return Math.floor(diff/60) + 'm ago';
            if (diff < 86400) return Math.floor(diff/3600) + 'h ago';
            return Math.floor(diff/86400) + 'd ago';
        };

        async function refresh() {
            try {
                const stats = await api('/api/stats');
                setText('stat-total', stats.total);
                setText('stat-fraud', stats.fraudCount);
                setText('stat-rate', (stats.fraudRate * 100).toFixed(1) + '%');
                setText('stat-avg', (stats.averageProbability * 100).toFixed(1) + '%');

                const page = await api('/api/transactions');
                document.getElementById('history').innerHTML = (page.transactions || []).map(tx =>
                    '<tr><td>' + tx.input.TransactionCountry + '</td>' +
                    '<td class="mono">' + tx.input.TransactionAmount.toFixed(2) + ' ' + tx.input.TransactionCurrencyCode + '</td>' +
                    '<td><span class="tier ' + tx.risk_level + '">' + tx.risk_level + '</span></td>' +
                    '<td class="mono">' + (tx.fraud_probability * 100).toFixed(1) + '%</td>' +
                    '<td>' + timeAgo(tx.createdAt) + '</td></tr>'
                ).join('');
            } catch (e) { /* stale session; sign-in panel still shown */ }
        }

        // Resume an existing session on load.
        api('/api/me').then(r => onSignedIn(r.user)).catch(() => setAuthMode());
    </script>
</body>
</html>`

func dashboardHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, dashboardHTML)
}
