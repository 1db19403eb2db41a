package preview

// liveClient is injected into the preview page in place of the standalone
// runtime. It forwards pointer input over /ws and replays the server's
// document patches. A dropped connection reloads the page, which resumes the
// session from the store.
const liveClient = `(function () {
  var KEY = 'proektsite-session';
  var els = {};
  var nodes = document.querySelectorAll('[data-el-id]');
  for (var i = 0; i < nodes.length; i++) els[nodes[i].getAttribute('data-el-id')] = nodes[i];

  var sid = window.sessionStorage.getItem(KEY);
  var url = (location.protocol === 'https:' ? 'wss:' : 'ws:') + '//' + location.host + '/ws';
  if (sid) url += '?session=' + encodeURIComponent(sid);
  var ws = new WebSocket(url);

  function send(msg) {
    if (ws.readyState === 1) ws.send(JSON.stringify(msg));
  }

  Object.keys(els).forEach(function (id) {
    var el = els[id];
    el.addEventListener('mouseenter', function () { send({ type: 'input', kind: 'enter', id: id }); });
    el.addEventListener('mouseleave', function () { send({ type: 'input', kind: 'leave', id: id }); });
    el.addEventListener('click', function (e) {
      e.stopPropagation();
      send({ type: 'input', kind: 'click', id: id });
    });
  });

  function apply(p) {
    var el;
    switch (p.op) {
      case 'text':
        if ((el = els[p.id])) el.textContent = p.value || '';
        break;
      case 'style':
        if ((el = els[p.id])) el.style[p.prop] = p.value || '';
        break;
      case 'reflow':
        if ((el = els[p.id])) void el.offsetWidth;
        break;
      case 'show':
        if ((el = document.getElementById('page-' + p.page))) el.classList.remove('hidden');
        break;
      case 'hide':
        if ((el = document.getElementById('page-' + p.page))) el.classList.add('hidden');
        break;
    }
  }

  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    switch (msg.type) {
      case 'hello':
        window.sessionStorage.setItem(KEY, msg.session);
        break;
      case 'patch':
        (msg.patches || []).forEach(apply);
        break;
      case 'alert':
        window.alert(msg.message);
        break;
      case 'link':
        if (msg.newTab) window.open(msg.url, '_blank');
        else window.location.href = msg.url;
        break;
    }
  };
  ws.onclose = function (ev) {
    if (ev.code === 4409) window.sessionStorage.removeItem(KEY);
    setTimeout(function () { location.reload(); }, 1000);
  };
})();`
