package server

import "html/template"

// indexTemplate 首页模板，表单 + 结果面板 + 历史纪录表。
var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// indexData 首页模板数据。
type indexData struct {
	Models          []string
	History         []recordView
	PlaybackEnabled bool
	MaxEntries      int
}

const indexHTML = `<!DOCTYPE html>
<html lang="zh-Hant">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>台語文字轉語音</title>
<style>
  body { font-family: "PingFang TC", "Microsoft JhengHei", sans-serif; max-width: 880px; margin: 24px auto; padding: 0 16px; color: #222; }
  h1 { font-size: 24px; }
  textarea { width: 100%; box-sizing: border-box; font-size: 16px; padding: 8px; }
  select, button { font-size: 15px; padding: 6px 14px; margin-right: 8px; }
  button.primary { background: #e8590c; color: #fff; border: none; border-radius: 4px; cursor: pointer; }
  .row { margin: 12px 0; }
  .meta { display: flex; gap: 12px; }
  .meta div { flex: 1; }
  .meta label { display: block; font-size: 13px; color: #666; margin-bottom: 4px; }
  .meta input { width: 100%; box-sizing: border-box; padding: 6px; font-size: 14px; }
  #error { color: #c92a2a; white-space: pre-wrap; }
  table { width: 100%; border-collapse: collapse; font-size: 14px; }
  th, td { border: 1px solid #ddd; padding: 6px 8px; text-align: left; word-break: break-all; }
  th { background: #f8f9fa; }
</style>
</head>
<body>
<h1>台語文字轉語音</h1>
<p>輸入要合成的文字，點擊「產生語音」。系統會呼叫 TTS 引擎，並保留最近 {{.MaxEntries}} 筆紀錄方便重播。</p>

<div class="row">
  <textarea id="text" rows="4" placeholder="輸入要轉成語音的句子，支援多行。"></textarea>
</div>
<div class="row">
  <select id="model">
    {{range .Models}}<option value="{{.}}">{{.}}</option>{{end}}
  </select>
  <button class="primary" id="submit">產生語音</button>
</div>
<div class="row">
  <audio id="audio" controls autoplay style="width:100%"></audio>
</div>
<div class="row meta">
  <div><label>狀態</label><input id="message" readonly></div>
  <div><label>白話字 / Tailo</label><input id="tailo" readonly></div>
  <div><label>IPA</label><input id="ipa" readonly></div>
  <div><label>拼音</label><input id="pinyin" readonly></div>
</div>
<div class="row"><span id="error"></span></div>

<h3>歷史紀錄（最多 {{.MaxEntries}} 筆）</h3>
<div class="row">
  <button id="refresh">重新載入紀錄</button>
  <button id="clear">清除紀錄</button>
</div>
<table>
  <thead>
    <tr><th>Time (UTC)</th><th>Model</th><th>Text</th><th>Audio URL</th><th></th></tr>
  </thead>
  <tbody id="history">
    {{range .History}}
    <tr data-id="{{.ID}}">
      <td>{{.Time}}</td><td>{{.Model}}</td><td>{{.Preview}}</td><td>{{.AudioURL}}</td>
      <td><button class="replay">重播</button>{{if $.PlaybackEnabled}} <button class="device">裝置播放</button>{{end}}</td>
    </tr>
    {{end}}
  </tbody>
</table>

<script>
const playbackEnabled = {{.PlaybackEnabled}};

function setResult(rec) {
  document.getElementById('audio').src = rec.audio_url;
  document.getElementById('message').value = rec.message || '';
  document.getElementById('tailo').value = rec.tailuo || '';
  document.getElementById('ipa').value = rec.ipa || '';
  document.getElementById('pinyin').value = rec.pinyin || '';
  document.getElementById('error').textContent = '';
}

function setError(msg) {
  document.getElementById('error').textContent = msg;
}

function renderHistory(entries) {
  const tbody = document.getElementById('history');
  tbody.innerHTML = '';
  for (const rec of entries) {
    const tr = document.createElement('tr');
    tr.dataset.id = rec.id;
    const deviceBtn = playbackEnabled ? ' <button class="device">裝置播放</button>' : '';
    tr.innerHTML = '<td></td><td></td><td></td><td></td>' +
      '<td><button class="replay">重播</button>' + deviceBtn + '</td>';
    tr.children[0].textContent = rec.time;
    tr.children[1].textContent = rec.model;
    tr.children[2].textContent = rec.preview;
    tr.children[3].textContent = rec.audio_url;
    tbody.appendChild(tr);
  }
}

async function refreshHistory() {
  const resp = await fetch('/api/history');
  const data = await resp.json();
  renderHistory(data.history || []);
}

document.getElementById('submit').addEventListener('click', async () => {
  const text = document.getElementById('text').value;
  const model = document.getElementById('model').value;
  setError('');
  try {
    const resp = await fetch('/api/tts', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({text, model}),
    });
    const data = await resp.json();
    if (!resp.ok) { setError(data.error || '合成失敗'); return; }
    setResult(data.record);
    renderHistory(data.history || []);
  } catch (err) {
    setError('無法連線到伺服器：' + err);
  }
});

document.getElementById('history').addEventListener('click', async (ev) => {
  const tr = ev.target.closest('tr');
  if (!tr) return;
  const id = tr.dataset.id;
  if (ev.target.classList.contains('replay')) {
    const resp = await fetch('/api/history/item?id=' + encodeURIComponent(id));
    const data = await resp.json();
    if (!resp.ok) { setError(data.error || '找不到紀錄'); return; }
    setResult(data.record);
  } else if (ev.target.classList.contains('device')) {
    const resp = await fetch('/api/play', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({id}),
    });
    if (!resp.ok) {
      const data = await resp.json();
      setError(data.error || '播放失敗');
    }
  }
});

document.getElementById('refresh').addEventListener('click', refreshHistory);

document.getElementById('clear').addEventListener('click', async () => {
  await fetch('/api/history/clear', {method: 'POST'});
  renderHistory([]);
});
</script>
</body>
</html>
`
